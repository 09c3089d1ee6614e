// Package taxonomy builds the category file from a ledger or a Money Manager
// backup.
package taxonomy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"rbc2mm/cmd/root"
	"rbc2mm/internal/ledger"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/mmbak"
	"rbc2mm/internal/models"
	"rbc2mm/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the taxonomy command
var Cmd = &cobra.Command{
	Use:   "taxonomy <ledger.tsv|backup.mmbak>",
	Short: "Extract the category taxonomy from a ledger or a .mmbak backup",
	Long: `Extract the unique, sorted (Category, Subcategory) pairs used by a history
ledger, or the active expense categories of a Money Manager backup. The result
is written to --output (default: files.categories) or printed with --output -.`,
	Args: cobra.ExactArgs(1),
	Run:  taxonomyFunc,
}

func taxonomyFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := root.GetConfig()
	logger := root.GetLogrusAdapter()

	tax, err := Extract(ctx, args[0], cfg.CSV.Delimiter, logger)
	if err != nil {
		logger.Fatalf("Error extracting taxonomy: %v", err)
	}

	output := root.SharedFlags.Output
	if output == "" {
		output = cfg.Files.Categories
	}
	if output == "-" {
		fmt.Fprint(cmd.OutOrStdout(), tax.Text())
		return
	}
	if err := tax.Save(output); err != nil {
		logger.Fatalf("Error writing taxonomy: %v", err)
	}
	logger.Info("Wrote category taxonomy",
		logging.Field{Key: logging.FieldOutputFile, Value: output},
		logging.Field{Key: logging.FieldCount, Value: tax.Len()})
}

// Extract reads the taxonomy from source, choosing the reader by extension.
func Extract(ctx context.Context, source, delimiter string, logger logging.Logger) (*store.Taxonomy, error) {
	if strings.EqualFold(filepath.Ext(source), ".mmbak") {
		backup, err := mmbak.Open(source, logger)
		if err != nil {
			return nil, err
		}
		defer backup.Close()

		pairs, err := backup.ActiveCategories(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewTaxonomy(pairs), nil
	}

	txs, err := ledger.ReadFile(source, ledger.DelimiterFor(source, delimiter), logger)
	if err != nil {
		return nil, err
	}
	return FromLedger(txs), nil
}

// FromLedger collects the category pairs used by a ledger. Transfer rows
// (whose category is an account) and rows awaiting review are skipped.
func FromLedger(txs []models.Transaction) *store.Taxonomy {
	pairs := make([]models.TaxonomyEntry, 0, len(txs))
	for _, tx := range txs {
		if tx.Tag == models.TagTransferOut || tx.NeedsReview {
			continue
		}
		pairs = append(pairs, models.TaxonomyEntry{Category: tx.Category, Subcategory: tx.Subcategory})
	}
	return store.NewTaxonomy(pairs)
}
