// Package consolidate turns per-file bank statements into one ledger with a
// single running balance across every account.
package consolidate

import (
	"time"

	"github.com/example/statement-consolidator/pkg/transaction"
)

// Consolidate unions the signed transactions of every account, sorts them by
// date then descending credit, and recomputes the running balance.
func Consolidate(accounts [][]transaction.Transaction, processedAt time.Time) *transaction.Ledger {
	ledger := &transaction.Ledger{ProcessedAt: processedAt}
	for _, txs := range accounts {
		for _, tx := range txs {
			ledger.AddTransaction(tx)
		}
	}

	ledger.Sort()
	ledger.RecomputeBalances()
	return ledger
}
