package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/dispatch"
	"github.com/jonathan/sketch-animator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server and pipeline workers",
	Long:  `Start an HTTP server that accepts sketch uploads and a worker pool that converts them into animated drawing videos.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := buildServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.database.Migrate(cmd.Context()); err != nil {
		return err
	}

	dispatcher := dispatch.New(svc.runner, svc.cfg.Workers, svc.cfg.QueueCapacity, svc.logger)
	dispatcher.Start()

	srv := server.New(server.Config{
		Port:           svc.cfg.Port,
		MaxUploadBytes: svc.cfg.MaxUploadBytes(),
	}, svc.database, svc.blobs, dispatcher, svc.logger)

	serveErr := srv.Start()

	// Let in-flight jobs finish before the process exits.
	stopCtx, cancel := context.WithTimeout(context.Background(), 2*svc.cfg.StageTimeout)
	defer cancel()
	if err := dispatcher.Stop(stopCtx); err != nil {
		svc.logger.Warn("dispatcher did not drain in time", zap.Error(err))
	}

	return serveErr
}
