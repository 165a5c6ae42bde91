package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	v1routes "transcript-rag/internal/api/v1/routes"
	"transcript-rag/internal/api/v1/services"
	"transcript-rag/internal/api/server"
)

var (
	host string
	port int
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "listen host (default: server.host)")
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: server.port)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API

- POST /api/v1/ingest ingests transcript URLs and feeds
- GET /api/v1/search* runs the retrieval queries
- GET /metrics exposes Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, logger, cleanup, err := cli.Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := server.DefaultConfig()
		cfg.Host = a.Config.Server.Host
		cfg.Port = a.Config.Server.Port
		cfg.Environment = a.Config.Server.Environment
		cfg.CORSOrigins = a.Config.Server.CORSOrigins
		if host != "" {
			cfg.Host = host
		}
		if port > 0 {
			cfg.Port = port
		}

		container := &v1routes.ServiceContainer{
			IngestService: services.NewIngestService(a.Coordinator, a.Feeds, logger),
			QueryService:  a.Query,
			ExportService: services.NewExportService(a.Episodes),
		}
		srv := server.NewServer(cfg, container, a.Registry, logger)

		errCh := srv.Start()
		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
