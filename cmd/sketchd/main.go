// Package main provides the entry point for the sketch animator service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sketchd",
	Short: "Sketch animator service",
	Long:  "sketchd converts uploaded sketches into animated drawing videos through a vectorize, animate and render pipeline, exposed over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
