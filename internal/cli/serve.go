package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmic-gao/nexo-sub000/internal/livehub"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		dev        bool
		maxHistory int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the nexo live transport server",
		Long: `Start the nexo HTTP server.

The server exposes, per document id:
  GET  /nexo/{docId}      document bootstrap snapshot
  GET  /nexo/{docId}/ws   the writer connection (websocket)
  GET  /nexo/{docId}/stream  read-only viewer stream (SSE)

Press Ctrl+C to gracefully shut down the server.`,
		Example: `  nexo serve
  nexo serve --addr :3000
  nexo serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if dev {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			hub := livehub.New(
				livehub.WithLogger(logger),
				livehub.WithMaxHistory(maxHistory),
			)
			srv := livehub.NewServer(hub)
			defer srv.Close()

			url := fmt.Sprintf("http://localhost%s", addr)
			logger.Info("server started", "url", url, "dev", dev)
			return srv.Listen(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address (host:port)")
	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "Enable development mode (verbose logging)")
	cmd.Flags().IntVar(&maxHistory, "max-history", 100, "Undo/redo history size per document")

	return cmd
}
