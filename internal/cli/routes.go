package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgf/dashboard-api/internal/core/access"
	"github.com/bgf/dashboard-api/internal/core/domain"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes [role]",
		Short: "List the dashboard pages each role may open",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := domain.AllRoles
			if len(args) == 1 {
				r := domain.Role(strings.ToLower(args[0]))
				if !r.Valid() {
					return fmt.Errorf("unknown role %q", args[0])
				}
				roles = []domain.Role{r}
			}
			out := cmd.OutOrStdout()
			for _, r := range roles {
				fmt.Fprintf(out, "%s:\n", r)
				for _, p := range access.Default.Navigation(r) {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			return nil
		},
	}
}
