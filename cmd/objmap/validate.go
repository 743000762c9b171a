package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"object-mapper/internal/analyze"
	"object-mapper/internal/mapping"
)

// errInvalid is returned when a declaration file has error diagnostics.
// The diagnostics themselves are already printed.
var errInvalid = errors.New("mapping declarations are invalid")

func newValidateCmd(flags *globalFlags) *cobra.Command {
	var (
		packages []string
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a mapping declaration file",
		Long: `Check a YAML mapping declaration file: version, enum values, member paths
and duplicate pairs. With --packages, type names and member paths are also
resolved against the given Go packages.`,
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

			var graph *analyze.TypeGraph
			if len(packages) > 0 {
				logger.Debug("loading packages", zap.Strings("patterns", packages), zap.String("dir", dir))

				graph, err = analyze.NewAnalyzer(dir).LoadPackages(packages...)
				if err != nil {
					return err
				}

				logger.Debug("packages loaded", zap.Int("types", len(graph.Types)))
			}

			diags := mapping.Validate(mf, graph)

			p := newPrinter(cmd.OutOrStdout(), flags.noColor)
			p.diagnostics(diags)
			p.summary(args[0], diags)

			logger.Debug("validated",
				zap.String("file", args[0]),
				zap.Int("pairs", len(mf.Mappings)),
				zap.Int("errors", len(diags.Errors)),
				zap.Int("warnings", len(diags.Warnings)))

			if diags.HasErrors() {
				return errInvalid
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&packages, "packages", nil, "Go package patterns to resolve types against")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the package patterns are resolved from")

	return cmd
}
