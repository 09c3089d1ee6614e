// Package convert implements the main pipeline command: parse, categorize,
// reconcile, merge with history and export.
package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"rbc2mm/cmd/common"
	"rbc2mm/cmd/root"
	"rbc2mm/internal/batch"
	"rbc2mm/internal/config"
	"rbc2mm/internal/fileutils"
	"rbc2mm/internal/ledger"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
	"rbc2mm/internal/rbcparser"
	"rbc2mm/internal/upload"
	"rbc2mm/internal/validation"

	"github.com/spf13/cobra"
)

var (
	historyFile string
	noHistory   bool
	doUpload    bool
)

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert RBC CSV exports into a categorized Money Manager ledger",
	Long: `Convert one or more RBC CSV exports (files or directories) into the Money
Manager layout. Every transaction is categorized, transfers between your own
accounts are collapsed, and the batch is merged into the history ledger.

Example:
  rbc2mm convert -i csv_files/ -o Funds.tsv --history Funds.tsv --upload`,
	Run: convertFunc,
}

func init() {
	Cmd.Flags().StringVar(&historyFile, "history", "", "History ledger to merge with (default: files.history)")
	Cmd.Flags().BoolVar(&noHistory, "no-history", false, "Write only the new batch")
	Cmd.Flags().BoolVar(&doUpload, "upload", false, "Upload the output file to Google Drive")
}

func convertFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := root.GetConfig()
	logger := root.GetLogrusAdapter()

	output := root.SharedFlags.Output
	if output == "" {
		logger.Fatal("Output file must be specified")
	}
	if err := validation.IsValidOutputFormat(output); err != nil {
		logger.Fatalf("Invalid output: %v", err)
	}

	files, err := common.CollectInputs(append(root.SharedFlags.Input, args...))
	if err != nil {
		logger.Fatalf("Error collecting inputs: %v", err)
	}

	appContainer := root.GetContainer(ctx)
	txs, err := common.LoadTransactions(appContainer.GetParser(), appContainer.GetAggregator(), files, root.SharedFlags.Validate, logger)
	if err != nil {
		logger.Fatalf("Error reading input: %v", err)
	}
	rbcparser.LogAccountSummary(logger, rbcparser.SummarizeAccounts(txs))

	report, err := appContainer.GetDriver().Run(ctx, txs)
	if err != nil {
		logger.Fatalf("Batch failed: %v", err)
	}

	result, err := mergeHistory(cfg, report, logger)
	if err != nil {
		logger.Fatalf("Error reading history: %v", err)
	}

	delim := ledger.DelimiterFor(output, cfg.CSV.Delimiter)
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(output)); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}
	if err := ledger.WriteFile(output, result, delim, logger); err != nil {
		logger.Fatalf("Error writing output: %v", err)
	}

	if len(report.Failures) > 0 {
		logger.Warn(fmt.Sprintf("%d transaction(s) need review", len(report.Failures)),
			logging.Field{Key: logging.FieldOutputFile, Value: output})
	}

	if doUpload {
		if err := uploadFile(ctx, cfg, output, logger); err != nil {
			logger.Fatalf("Upload failed: %v", err)
		}
	}
	logger.Info("Conversion completed successfully!")
}

// mergeHistory merges the batch into the history ledger given by --history
// or files.history. Without one the batch is returned as is.
func mergeHistory(cfg *config.Config, report *batch.Report, logger logging.Logger) ([]models.Transaction, error) {
	path := historyFile
	if path == "" {
		path = cfg.Files.History
	}
	if noHistory || path == "" {
		return report.Transactions, nil
	}

	history, err := ledger.ReadFile(path, ledger.DelimiterFor(path, cfg.CSV.Delimiter), logger)
	if err != nil {
		return nil, err
	}
	merged, dropped := report.MergeWith(history)
	logger.Info("Merged batch into history",
		logging.Field{Key: logging.FieldInputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(merged)},
		logging.Field{Key: "duplicates_dropped", Value: dropped})
	return merged, nil
}

func uploadFile(ctx context.Context, cfg *config.Config, path string, logger logging.Logger) error {
	common.WarnIfExposed(cfg.Upload.Token, logger)
	files, err := upload.NewDriveFiles(ctx, cfg.Upload.Credentials, cfg.Upload.Token)
	if err != nil {
		return err
	}
	_, err = upload.NewUploader(files, cfg.Upload.FolderID, logger).Upload(ctx, path)
	return err
}
