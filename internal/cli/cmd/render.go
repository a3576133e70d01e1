package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"squadron/internal/render"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <instance>",
	Short: "Render an instance's config files without provisioning",
	Long: `Renders the configuration files exactly as provisioning would write
them, with secret-bearing fields left as their inline values. Output goes
to stdout, or to a directory with --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		inst, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown instance %q", args[0])
		}

		files := render.Files(inst)

		if renderOut != "" {
			if err := os.MkdirAll(renderOut, 0755); err != nil {
				return err
			}
			for _, f := range files {
				if err := os.WriteFile(filepath.Join(renderOut, f.Name), f.Content, 0644); err != nil {
					return err
				}
			}
			fmt.Println(okStyle.Render(fmt.Sprintf("✓ wrote %d files to %s", len(files), renderOut)))
			return nil
		}

		for _, f := range files {
			fmt.Println(headerStyle.Render("-- " + f.Name + " --"))
			os.Stdout.Write(f.Content)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "directory to write rendered files to")
	RootCmd.AddCommand(renderCmd)
}
