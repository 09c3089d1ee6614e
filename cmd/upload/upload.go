// Package upload publishes a file to the configured Google Drive folder.
package upload

import (
	"context"
	"fmt"

	"rbc2mm/cmd/common"
	"rbc2mm/cmd/root"
	"rbc2mm/internal/upload"

	"github.com/spf13/cobra"
)

var folderID string

// Cmd represents the upload command
var Cmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file to Google Drive, replacing a file with the same name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg := root.GetConfig()
		logger := root.GetLogrusAdapter()

		folder := folderID
		if folder == "" {
			folder = cfg.Upload.FolderID
		}

		common.WarnIfExposed(cfg.Upload.Token, logger)
		files, err := upload.NewDriveFiles(ctx, cfg.Upload.Credentials, cfg.Upload.Token)
		if err != nil {
			logger.Fatalf("Error connecting to Drive: %v", err)
		}
		res, err := upload.NewUploader(files, folder, logger).Upload(ctx, args[0])
		if err != nil {
			logger.Fatalf("Upload failed: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Name, res.FileID)
	},
}

func init() {
	Cmd.Flags().StringVar(&folderID, "folder", "", "Drive folder id (default: upload.folder_id)")
}
