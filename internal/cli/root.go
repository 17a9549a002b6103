// Package cli implements bgfctl, the operator tool for the dashboard's
// MongoDB store and workflow configuration.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bgf/dashboard-api/internal/infrastructure/config"
	mongodb "github.com/bgf/dashboard-api/internal/infrastructure/db/mongo"
)

// NewRootCmd builds the bgfctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bgfctl",
		Short: "Operator tasks for the BGF dashboard",
		Long: `bgfctl manages the dashboard's data store and workflow configuration.

Examples:
  # Copy the built-in staff access codes into MongoDB
  bgfctl seed-access-codes

  # Seed codes from a YAML file
  bgfctl seed-access-codes --file codes.yaml

  # Check a stage graph file before deploying it
  bgfctl validate-graphs --file graphs.yaml

  # Create the collection indexes
  bgfctl ensure-indexes

  # Show which dashboard pages a role can open
  bgfctl routes head_of_programs
`,
		SilenceUsage: true,
	}

	root.AddCommand(newSeedAccessCodesCmd(connectStore))
	root.AddCommand(newValidateGraphsCmd())
	root.AddCommand(newEnsureIndexesCmd(connectStore))
	root.AddCommand(newRoutesCmd())
	return root
}

// Execute runs bgfctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connector opens the database for a command. The returned func releases it.
type connector func(ctx context.Context) (*mongo.Database, func(), error)

func connectStore(ctx context.Context) (*mongo.Database, func(), error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = client.Disconnect(context.Background()) }, nil
}
