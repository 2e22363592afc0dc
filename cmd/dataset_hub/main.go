// Package main provides the entry point for the Dataset Hub service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dataset_hub",
	Short: "Dataset Hub import service",
	Long:  "Dataset Hub imports YOLO-format object detection datasets, extracts annotations and image metadata, and serves them via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
