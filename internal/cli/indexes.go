package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mongodb "github.com/bgf/dashboard-api/internal/infrastructure/db/mongo"
)

func newEnsureIndexesCmd(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes the API relies on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := mongodb.EnsureIndexes(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexes ensured on %s\n", db.Name())
			return nil
		},
	}
}
