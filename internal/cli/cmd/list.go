package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"squadron/internal/journal"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show declared instances and their last provisioning run",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		var jrnl *journal.Store
		if _, err := os.Stat(settings.JournalPath); err == nil {
			jrnl, err = journal.NewStore(settings.JournalPath)
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-16s %-9s %-14s %-22s %s", "INSTANCE", "ENABLED", "LAST STATE", "LAST STEP", "FINISHED")))
		for _, inst := range reg.All() {
			state, step, finished := "-", "-", "-"
			if jrnl != nil {
				run, err := jrnl.Latest(inst.Name)
				if err != nil {
					return err
				}
				if run != nil {
					state, step = run.State, run.Step
					if !run.FinishedAt.IsZero() {
						finished = run.FinishedAt.Format("2006-01-02 15:04:05")
					}
				}
			}
			line := fmt.Sprintf("%-16s %-9t %-14s %-22s %s", inst.Name, inst.Enabled, state, step, finished)
			switch state {
			case "Running":
				fmt.Println(okStyle.Render(line))
			case "Failed":
				fmt.Println(errStyle.Render(line))
			default:
				fmt.Println(dimStyle.Render(line))
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}
