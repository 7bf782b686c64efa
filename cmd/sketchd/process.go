package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <job-id>",
	Short: "Run the pipeline for one pending job",
	Long:  `Run the vectorize, animate and render pipeline for a single pending job. Useful for retrying jobs that could not be scheduled, or for processing without the server.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", args[0], err)
	}

	svc, err := buildServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.close()

	return svc.runner.Run(cmd.Context(), jobID)
}
