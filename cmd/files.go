package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldops-drive/drive"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the configured folder with the API key",
	Long:  "Run the same first-page folder query as GET /files and print the result.",
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	client, err := drive.NewAPIKeyClient(ctx, cfg.APIKey, cfg.DriveEndpoint)
	if err != nil {
		return fmt.Errorf("Failed to create Drive service: %w", err)
	}

	files, err := client.ListFolder(ctx, cfg.FolderID)
	if err != nil {
		return fmt.Errorf("Failed to fetch files: %w", err)
	}

	printFiles(cmd.OutOrStdout(), files)
	return nil
}
