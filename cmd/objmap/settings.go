package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSettingsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective mapper settings",
		Long:  "Print the settings loaded from the config file and OBJMAP_ environment variables, as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}
}
