// Package cli wires the command-line entry point: a thin cobra.Command
// tree with serve and version subcommands, grounded on
// blueprints/githome/cli/root.go and blueprints/kanban/cli/root.go.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Execute builds and runs the root command against ctx.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:     "nexo",
		Short:   "nexo - block-structured rich document editor engine",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
	}

	root.AddCommand(newServeCmd(), newVersionCmd())

	return root.ExecuteContext(ctx)
}
