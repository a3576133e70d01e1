package cmd

import (
	"fmt"
	"strings"

	"github.com/gorcon/rcon"
	"github.com/spf13/cobra"

	"squadron/internal/secrets"
)

var rconAddr string

var rconCmd = &cobra.Command{
	Use:   "rcon <instance> <command...>",
	Short: "Send a one-shot admin-console command to a running instance",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		inst, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown instance %q", args[0])
		}

		password := inst.Config.Rcon.Password
		if ref := inst.Config.Rcon.PasswordFile; ref != "" {
			data, err := secrets.FileStore{}.Lookup(ref)
			if err != nil {
				return fmt.Errorf("resolving rcon password: %w", err)
			}
			password = string(data)
		}

		conn, err := rcon.Dial(fmt.Sprintf("%s:%d", rconAddr, inst.RconPort), password)
		if err != nil {
			return fmt.Errorf("rcon connection failed: %w", err)
		}
		defer conn.Close()

		response, err := conn.Execute(strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("rcon command failed: %w", err)
		}
		fmt.Println(response)
		return nil
	},
}

func init() {
	rconCmd.Flags().StringVar(&rconAddr, "addr", "127.0.0.1", "address the instance's rcon listener is reachable on")
	RootCmd.AddCommand(rconCmd)
}
