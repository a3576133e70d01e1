package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"squadron/internal/ports"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the declaration and port assignments without provisioning",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Port assignments"))
		fmt.Println(headerStyle.Render(fmt.Sprintf("%-16s %-12s %-12s %-8s %-8s", "INSTANCE", "GAME", "QUERY", "RCON", "BEACON")))
		for _, inst := range reg.Enabled() {
			set := ports.Expand(inst)
			fmt.Printf("%-16s %-12s %-12s %-8s %-8s\n",
				inst.Name,
				joinPorts(set.Game), joinPorts(set.Query),
				joinPorts(set.Rcon), joinPorts(set.Beacon))
		}

		if err := ports.Validate(reg); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(titleStyle.Render("Firewall plan"))
		fmt.Println(headerStyle.Render(fmt.Sprintf("%-8s %s", "PORT", "TRANSPORT")))
		for _, rule := range ports.FirewallRules(reg) {
			fmt.Printf("%-8d %s\n", rule.Port, transport(rule))
		}

		fmt.Println()
		fmt.Println(okStyle.Render(fmt.Sprintf("✓ %d instances valid, no port conflicts", len(reg.Enabled()))))
		return nil
	},
}

func joinPorts(ps []int) string {
	out := ""
	for i, p := range ps {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprint(p)
	}
	return out
}

func transport(r ports.Rule) string {
	switch {
	case r.TCP && r.UDP:
		return "tcp+udp"
	case r.TCP:
		return "tcp"
	default:
		return "udp"
	}
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
