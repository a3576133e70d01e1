package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"squadron/internal/instance"
	"squadron/internal/journal"
	"squadron/internal/patchelf"
	"squadron/internal/provision"
	"squadron/internal/secrets"
	"squadron/internal/steamcmd"
)

var provisionCmd = &cobra.Command{
	Use:   "provision [instance...]",
	Short: "Install, configure and launch the declared instances",
	Long: `Validates ports across every enabled instance, then provisions each
selected instance: fetch the server application and mods, patch binaries,
render configuration, inject secrets, fix permissions, launch. With no
arguments every enabled instance is provisioned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		selected, err := selectInstances(reg, args)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return errors.New("no enabled instances to provision")
		}

		for _, inst := range selected {
			for _, dir := range []string{inst.StateDir, inst.CacheDir} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
		}

		jrnl, err := journal.NewStore(settings.JournalPath)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}

		orch := provision.NewOrchestrator(
			steamcmd.NewClient(settings.SteamCmdBin, logger.Named("steamcmd")),
			patchelf.NewTool(settings.PatchelfBin, settings.Interpreter, logger.Named("patchelf")),
			provision.NewExecLauncher(logger.Named("launcher")),
			secrets.FileStore{},
			jrnl,
			settings.MinFreeDiskBytes(),
			logger.Named("provision"),
		)

		results, err := orch.ProvisionMany(reg, selected)
		if err != nil {
			return err
		}

		failed := 0
		for _, inst := range selected {
			if rerr := results[inst.Name]; rerr != nil {
				failed++
				fmt.Println(errStyle.Render(fmt.Sprintf("✗ %s: %v", inst.Name, rerr)))
			} else {
				fmt.Println(okStyle.Render(fmt.Sprintf("✓ %s provisioned", inst.Name)))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d instances failed", failed, len(selected))
		}
		return nil
	},
}

// selectInstances returns the enabled instances matching args, or every
// enabled instance when args is empty. Naming a disabled or unknown
// instance is an error rather than a silent no-op.
func selectInstances(reg *instance.Registry, args []string) ([]*instance.ServerInstance, error) {
	if len(args) == 0 {
		return reg.Enabled(), nil
	}
	var out []*instance.ServerInstance
	for _, name := range args {
		inst, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown instance %q", name)
		}
		if !inst.Enabled {
			return nil, fmt.Errorf("instance %q is disabled", name)
		}
		out = append(out, inst)
	}
	return out, nil
}

func init() {
	RootCmd.AddCommand(provisionCmd)
}
