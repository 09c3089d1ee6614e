package rbcparser

import (
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// AccountSummary describes one account seen in a batch.
type AccountSummary struct {
	Account     string
	AccountType string
	Count       int
}

// SummarizeAccounts lists the distinct accounts of a batch in order of first
// appearance, each with the account type of its first row.
func SummarizeAccounts(txs []models.Transaction) []AccountSummary {
	index := make(map[string]int)
	var out []AccountSummary
	for _, tx := range txs {
		i, ok := index[tx.Account]
		if !ok {
			i = len(out)
			index[tx.Account] = i
			out = append(out, AccountSummary{Account: tx.Account, AccountType: tx.AccountType})
		}
		out[i].Count++
	}
	return out
}

// LogAccountSummary logs one line per account.
func LogAccountSummary(logger logging.Logger, summary []AccountSummary) {
	for _, s := range summary {
		logger.Info("Account in batch",
			logging.Field{Key: logging.FieldAccount, Value: s.Account},
			logging.Field{Key: "account_type", Value: s.AccountType},
			logging.Field{Key: logging.FieldCount, Value: s.Count})
	}
}
