package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgate/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docgate/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the docgate HTTP API.

Endpoints:
  GET    /files             list stored files
  GET    /files/{fileName}  download a file
  POST   /upload            upload a file (multipart field "file")
  DELETE /files/{fileName}  delete a file and its text
  POST   /submit-query      ask a question over all stored texts
  GET    /consistency       report orphaned files and records
  GET    /healthz           liveness check

The listen address comes from server.addr, or PORT when set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		srv, err := httpapi.NewServer(&httpapi.Ports{
			Ingest:   a.ingest,
			Deletion: a.deletion,
			Query:    a.query,
			Files:    a.files,
			Audit:    a.audit,
		}, httpapi.Config{
			CORSOrigin:     a.settings.Server.CORSOrigin,
			MaxUploadBytes: a.settings.Server.MaxUploadBytes,
		})
		if err != nil {
			return err
		}

		if a.monitor != nil {
			go func() {
				if err := a.monitor.Run(ctx); err != nil {
					logger.Error("consistency monitor stopped: %v", err)
				}
			}()
		}

		addr := a.settings.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "docgate listening on %s\n", addr)
		return srv.Run(ctx, addr)
	})
}
