package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/dataset-hub/internal/config"
	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/observability"
	"github.com/jonathan/dataset-hub/internal/pipeline"
)

var (
	importConfigURL   string
	importDatasetURL  string
	importName        string
	importDescription string
	importVerbose     bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a dataset from the command line",
	Long:  `Run a dataset import synchronously, without going through the API server.`,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importConfigURL, "config-url", "", "URL of the dataset's data.yaml (required)")
	importCmd.Flags().StringVar(&importDatasetURL, "dataset-url", "", "URL of the dataset archive (required)")
	importCmd.Flags().StringVar(&importName, "name", "", "Dataset name (required)")
	importCmd.Flags().StringVar(&importDescription, "description", "", "Dataset description")
	importCmd.Flags().BoolVar(&importVerbose, "verbose", false, "Print a summary of the imported dataset")
	_ = importCmd.MarkFlagRequired("config-url")
	_ = importCmd.MarkFlagRequired("dataset-url")
	_ = importCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
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

	req := db.ImportRequest{
		Name:        importName,
		Description: importDescription,
		ConfigURL:   importConfigURL,
		DatasetURL:  importDatasetURL,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	jobID := uuid.NewString()
	now := time.Now().UTC()
	job := &db.ImportJob{
		JobID:     jobID,
		Status:    db.StatusQueued,
		Request:   req,
		CreatedAt: now,
		Progress: &db.JobProgress{
			CurrentStep:    "queued",
			StepsCompleted: []string{},
			TotalSteps:     6,
		},
	}
	if err := database.CreateImportJob(ctx, job); err != nil {
		return fmt.Errorf("creating import job: %w", err)
	}

	proc := pipeline.NewProcessor(blobs, database, log)
	runErr := proc.ProcessImport(ctx, jobID, req)

	if importVerbose {
		printer := observability.NewPrinter(os.Stdout)
		final, err := database.GetImportJob(ctx, jobID)
		if err == nil && final != nil {
			printer.PrintJob(final)
			if final.DatasetID != nil {
				if ds, err := database.GetDataset(ctx, *final.DatasetID); err == nil {
					printer.PrintDataset(ds)
				}
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("import failed: %w", runErr)
	}
	fmt.Printf("Import completed, job %s\n", jobID)
	return nil
}
