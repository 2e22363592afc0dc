package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/dataset-hub/internal/config"
	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/observability"
	"github.com/jonathan/dataset-hub/internal/pipeline"
	"github.com/jonathan/dataset-hub/internal/queue"
	"github.com/jonathan/dataset-hub/internal/server"
	"github.com/jonathan/dataset-hub/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts dataset import requests and serves imported datasets.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		settings.Port = servePort
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

	var q queue.Queue
	if settings.Environment == config.EnvProduction {
		q = queue.NewPushQueue(settings.WorkerURL, log)
	} else {
		proc := pipeline.NewProcessor(blobs, database, log)
		localQueue := queue.NewLocalQueue(proc, settings.Workers, settings.QueueSize, log)
		defer localQueue.Close()
		q = localQueue
	}

	srv := server.New(server.Config{Port: settings.Port}, database, q, log)
	return srv.Start()
}

func newBlobStore(ctx context.Context, settings *config.Settings) (storage.Store, error) {
	if settings.Environment == config.EnvProduction {
		store, err := storage.NewGCSStore(ctx, settings.StorageBucket)
		if err != nil {
			return nil, fmt.Errorf("creating GCS store: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewLocalStore(settings.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("creating local store: %w", err)
	}
	return store, nil
}
