// Package categorize handles single-transaction categorization
package categorize

import (
	"context"
	"fmt"
	"time"

	"rbc2mm/cmd/root"
	"rbc2mm/internal/categorizer"
	"rbc2mm/internal/dateutils"
	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	desc1  string
	desc2  string
	amount string
	date   string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize one transaction from its descriptions",
	Long: `Categorize one transaction using the mapping file and the configured
fallback (Gemini or interactive). Learned mappings are saved as in a batch.

Example:
  rbc2mm categorize --desc1 "HAPPY BURGER #1234 TORONTO ON" --amount -12.34`,
	Run: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVar(&desc1, "desc1", "", "Description 1")
	Cmd.Flags().StringVar(&desc2, "desc2", "", "Description 2 (optional)")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "-1", "Signed amount (optional)")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Transaction date MM/DD/YYYY (optional)")
	_ = Cmd.MarkFlagRequired("desc1")
}

func categorizeFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := root.GetLogrusAdapter()

	tx, err := buildTransaction(desc1, desc2, amount, date)
	if err != nil {
		logger.Fatalf("Invalid transaction: %v", err)
	}

	res, err := root.GetContainer(ctx).GetResolver().Resolve(ctx, categorizer.FromModel(tx))
	if err != nil {
		logger.Fatalf("Error categorizing transaction: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Category:    %s\nSubcategory: %s\nNote:        %s\nSource:      %s\n",
		res.Category, res.Subcategory, res.Note, res.Source)
	if res.Learned {
		fmt.Fprintln(cmd.OutOrStdout(), "Mapping saved.")
	}
}

func buildTransaction(d1, d2, amt, day string) (models.Transaction, error) {
	value, err := decimal.NewFromString(amt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("amount %q: %w", amt, err)
	}
	when := time.Now().UTC().Truncate(24 * time.Hour)
	if day != "" {
		when, err = dateutils.ParseBankDate(day)
		if err != nil {
			return models.Transaction{}, err
		}
	}
	tx := models.Transaction{
		Date:   when,
		Desc1:  d1,
		Desc2:  models.StringPtr(d2),
		Amount: value,
	}
	tx.Normalize()
	return tx, nil
}
