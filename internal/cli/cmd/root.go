package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"squadron/internal/config"
	"squadron/internal/instance"
)

var (
	settings *config.Settings
	logger   *zap.Logger

	declarationFlag string
	debugFlag       bool
)

var RootCmd = &cobra.Command{
	Use:   "squadron",
	Short: "Declarative multi-instance Squad dedicated-server provisioner",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if declarationFlag != "" {
			settings.DeclarationPath = declarationFlag
		}
		if debugFlag {
			settings.Debug = true
		}
		logger, err = newLogger(settings.Debug)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	RootCmd.PersistentFlags().StringVar(&declarationFlag, "declaration", "", "path to the instance declaration file")
	RootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug logging")

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func loadRegistry() (*instance.Registry, error) {
	return config.LoadDeclaration(settings)
}
