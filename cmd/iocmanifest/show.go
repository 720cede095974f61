package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/junioryono/ioc/internal/graph"
	"github.com/junioryono/ioc/manifest"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the bindings of a manifest",
		Long: `Print the bindings of a manifest.

Formats:
  table  bindings, instances and contextual overrides (default)
  dot    Graphviz graph of the alias chains
  text   alias chains grouped by depth
  list   adjacency list

Examples:
  iocmanifest show
  iocmanifest show --format dot | dot -Tsvg > bindings.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load()
			if err != nil {
				return err
			}

			g, err := m.Graph()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			v := graph.NewVisualizer(g)

			switch a.cfg.Format {
			case "table":
				return writeTable(out, m)
			case "dot":
				return v.WriteDOT(out)
			case "text":
				return v.WriteText(out)
			case "list":
				return v.WriteAdjacencyList(out)
			default:
				return fmt.Errorf("unknown format %q (want table, dot, text or list)", a.cfg.Format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "table", "output format: table, dot, text or list")
	_ = a.v.BindPFlag("format", cmd.Flags().Lookup("format"))

	return cmd
}

// writeTable renders the manifest as aligned columns.
func writeTable(out io.Writer, m *manifest.Manifest) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "KEY\tKIND\tTARGET\tSHARED")
	for _, b := range m.Bindings {
		target := b.To
		if b.Kind() == "autowire" {
			target = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", b.Key, b.Kind(), target, b.Shared)
	}
	for _, key := range m.InstanceKeys() {
		fmt.Fprintf(w, "%s\tinstance\t%v\ttrue\n", key, m.Instances[key])
	}

	if len(m.Contextual) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WHEN\tNEEDS\tGIVE")
		for _, ctx := range m.Contextual {
			give := ctx.Give
			if give == "" {
				give = fmt.Sprintf("%v (value)", ctx.Value)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Join(ctx.When, ", "), ctx.Needs, give)
		}
	}

	return w.Flush()
}
