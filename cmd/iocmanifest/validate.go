package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a manifest for missing fields, duplicate keys and alias cycles",
		Long: `Check a manifest without building anything.

Reports every missing or malformed field, keys declared more than once and
bindings whose aliases loop back on themselves.

Examples:
  iocmanifest validate
  iocmanifest validate -m deploy/ioc.yaml
  IOC_MANIFEST=deploy/ioc.yaml iocmanifest validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			m, err := a.load()
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", red("✗"), err)
				return err
			}

			if err := m.Validate(); err != nil {
				a.logger.Debug("manifest is invalid", zap.Error(err))
				fmt.Fprintf(out, "%s %s\n%s\n", red("✗"), bold(a.cfg.Manifest), err)
				return fmt.Errorf("%s is invalid", a.cfg.Manifest)
			}

			fmt.Fprintf(out, "%s %s: %d bindings, %d instances, %d contextual overrides\n",
				green("✓"), bold(a.cfg.Manifest), len(m.Bindings), len(m.Instances), len(m.Contextual))
			return nil
		},
	}
}
