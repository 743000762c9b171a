// Command objmap checks object mapping declaration files and shows the
// settings a mapper would start from.
//
// Usage:
//
//	objmap validate mappings.yaml [--packages ./store,./warehouse]
//	objmap fmt mappings.yaml [-w]
//	objmap settings [--config objmap.yaml]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"object-mapper/internal/config"
	"object-mapper/internal/logging"
)

type globalFlags struct {
	config  string
	noColor bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "objmap",
		Short:         "Object mapping declaration tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "settings file (default ./objmap.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newValidateCmd(flags))
	rootCmd.AddCommand(newSettingsCmd(flags))
	rootCmd.AddCommand(newFormatCmd(flags))

	return rootCmd
}

// setup loads the settings and builds the logger shared by the subcommands.
func setup(flags *globalFlags) (config.Settings, *zap.Logger, error) {
	settings, err := config.Load(flags.config)
	if err != nil {
		return config.Settings{}, nil, err
	}

	logger, err := logging.New(settings.Log)
	if err != nil {
		return config.Settings{}, nil, err
	}

	return settings, logger, nil
}
