package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/dataset-hub/internal/config"
	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/observability"
	"github.com/jonathan/dataset-hub/internal/pipeline"
	"github.com/jonathan/dataset-hub/internal/server"
)

var workerPort int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the import worker",
	Long:  `Start an HTTP server that receives pushed import jobs on /process and runs them.`,
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerPort, "port", 0, "Port to listen on (overrides WORKER_PORT)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if workerPort != 0 {
		settings.WorkerPort = workerPort
	}

	log, err := observability.NewLogger(settings.Environment)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, settings.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	blobs, err := newBlobStore(ctx, settings)
	if err != nil {
		return err
	}

	proc := pipeline.NewProcessor(blobs, database, log)
	worker := server.NewWorker(settings.WorkerPort, proc, log)
	return worker.ListenAndServe()
}
