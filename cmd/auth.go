package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	gdrive "google.golang.org/api/drive/v3"

	"fieldops-drive/auth"
	"fieldops-drive/config"
	"fieldops-drive/drive"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain and cache a Google Drive OAuth token",
	Long: `Load the OAuth client from the credentials file and reuse the cached token
if there is one. Otherwise print the consent URL, read the authorization code
from stdin and store the resulting token. The folder is then listed with the
authorized client to prove the token works.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlag(cmd, config.KeyFolderID, "folder")
	},
	RunE: runAuth,
}

func init() {
	authCmd.Flags().String("folder", "", "Google Drive folder ID to list once authorized")
}

func runAuth(cmd *cobra.Command, args []string) error {
	authenticator, err := auth.NewGoogleAuthenticator(auth.Config{
		CredentialsPath: credentialsPath,
		TokenPath:       tokenPath,
	}, auth.NewTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout()), logger)
	if err != nil {
		return fmt.Errorf("Error loading client secret file: %w", err)
	}

	return authenticator.Authorize(cmd.Context(), listWithClient(cmd.OutOrStdout()))
}

func listWithClient(out io.Writer) auth.Continuation {
	return func(ctx context.Context, client *http.Client) error {
		if cfg.FolderID == "" {
			logger.Warn(config.KeyFolderID + " is not set, skipping folder listing")
			return nil
		}

		driveClient, err := drive.NewOAuthClient(ctx, client, cfg.DriveEndpoint)
		if err != nil {
			return fmt.Errorf("Failed to create Drive service: %w", err)
		}

		files, err := driveClient.ListFolder(ctx, cfg.FolderID)
		if err != nil {
			return err
		}

		printFiles(out, files)
		return nil
	}
}

func printFiles(out io.Writer, files []*gdrive.File) {
	if len(files) == 0 {
		fmt.Fprintln(out, "No files found.")
		return
	}

	fmt.Fprintln(out, "Files:")
	for _, f := range files {
		marker := ""
		if f.MimeType == drive.FolderMimeType {
			marker = " [folder]"
		}
		fmt.Fprintf(out, "%s (%s) %s%s\n", f.Name, f.MimeType, f.Id, marker)
	}
}
