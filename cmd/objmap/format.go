package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"object-mapper/internal/mapping"
)

func newFormatCmd(flags *globalFlags) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a mapping declaration file in canonical form",
		Long: `Print a mapping declaration file in canonical form: the 121 shorthand is
expanded into members and the schema version is made explicit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			mf, err := mapping.LoadFile(args[0])
			if err != nil {
				return err
			}

			if write {
				logger.Debug("rewriting", zap.String("file", args[0]))
				return mapping.WriteFile(mf, args[0])
			}

			out, err := mapping.Marshal(mf)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")

	return cmd
}
