package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fieldops-drive/config"
	"fieldops-drive/drive"
	"fieldops-drive/proxy"
	"fieldops-drive/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Drive proxy",
	Long: `Serve GET /, GET /files and GET /download/{fileId}, forwarding to the
Google Drive API with the configured API key until SIGINT or SIGTERM.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for key, flag := range map[string]string{
			config.KeyPort:          "port",
			config.KeyFolderID:      "folder",
			config.KeyDriveEndpoint: "drive-endpoint",
		} {
			if err := bindFlag(cmd, key, flag); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", config.DEFAULT_PORT, "Port to listen on")
	serveCmd.Flags().String("folder", "", "Google Drive folder ID to list")
	serveCmd.Flags().String("drive-endpoint", "", "Override the Drive API base URL")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	client, err := drive.NewAPIKeyClient(ctx, cfg.APIKey, cfg.DriveEndpoint)
	if err != nil {
		return fmt.Errorf("Failed to create Drive service: %w", err)
	}

	opts := []proxy.Option{proxy.WithLogger(logger)}

	if cfg.AuditEnabled() {
		db := storage.NewSQLiteDB(cfg.AuditDBPath)
		if err := db.Initialize(); err != nil {
			return fmt.Errorf("Failed to initialize database: %w", err)
		}
		defer db.Close()

		janitor := storage.NewJanitor(db, cfg.AuditRetention, logger)
		if err := janitor.Start(storage.DEFAULT_PRUNE_SCHEDULE); err != nil {
			return err
		}
		defer janitor.Stop()

		opts = append(opts, proxy.WithAuditor(db))
		logger.WithField("path", cfg.AuditDBPath).Info("request auditing enabled")
	}

	srv := proxy.NewServer(cfg, client, opts...)

	return proxy.Run(ctx, cfg.Addr(), otelhttp.NewHandler(srv, "drive-proxy"), logger)
}
