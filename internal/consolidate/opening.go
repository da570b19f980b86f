package consolidate

import (
	"github.com/example/statement-consolidator/internal/bank"
	"github.com/example/statement-consolidator/pkg/transaction"
	"github.com/shopspring/decimal"
)

// OpeningDescription labels the synthetic opening entry of every account
const OpeningDescription = "Balance brought forward"

// OpeningEntry derives the entry that brings an account's balance from zero
// to what it was before its earliest transaction. The prior balance is the
// first reported balance with the first transaction's effect reversed; a
// non-negative balance becomes a credit, a negative one a debit of its magnitude.
func OpeningEntry(first bank.Entry) bank.Entry {
	prior := first.Balance.Add(first.Debit).Sub(first.Credit)

	opening := bank.Entry{
		Date:        first.Date,
		Description: OpeningDescription,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Balance:     prior,
	}
	if prior.IsNegative() {
		opening.Debit = prior.Abs()
	} else {
		opening.Credit = prior
	}
	return opening
}

// Sign prepends the opening entry to an account's history and converts it to
// ledger transactions with negated debits and no balance. An account with no
// entries yields nothing.
func Sign(acc Account) []transaction.Transaction {
	if len(acc.Entries) == 0 {
		return nil
	}

	entries := append([]bank.Entry{OpeningEntry(acc.Entries[0])}, acc.Entries...)
	txs := make([]transaction.Transaction, len(entries))
	for i, e := range entries {
		txs[i] = transaction.Transaction{
			Date:          e.Date,
			Description:   e.Description,
			Credit:        e.Credit,
			Debit:         e.Debit.Neg(),
			Bank:          acc.Bank,
			AccountHolder: acc.AccountHolder,
		}
	}
	return txs
}
