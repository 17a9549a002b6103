package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgf/dashboard-api/internal/core/workflow"
)

func newValidateGraphsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate-graphs",
		Short: "Validate stage graph definitions",
		Long:  "Parses and validates a stage graph YAML file, or the embedded graphs when --file is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reg *workflow.Registry
				err error
			)
			if file == "" {
				reg, err = workflow.Default()
			} else {
				var data []byte
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				reg, err = workflow.Load(data)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range reg.Types() {
				g, _ := reg.Graph(t)
				var terminal []string
				for name, st := range g.Stages {
					if st.Terminal {
						terminal = append(terminal, string(name))
					}
				}
				fmt.Fprintf(out, "%-12s initial=%s stages=%d terminal=%d\n", t, g.Initial, len(g.Stages), len(terminal))
			}
			fmt.Fprintf(out, "ok: %s\n", strings.Join(typeNames(reg), ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "stage graph YAML; defaults to the embedded graphs")
	return cmd
}

func typeNames(reg *workflow.Registry) []string {
	types := reg.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
