package transaction

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Columns is the canonical column order of a consolidated ledger
var Columns = []string{"date", "description", "credit", "debit", "balance", "bank", "account_holder"}

// Transaction represents a single line of the consolidated ledger.
// Debit is stored non-positive so that Credit + Debit is the signed cash flow.
type Transaction struct {
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Credit        decimal.Decimal `json:"credit"`
	Debit         decimal.Decimal `json:"debit"`
	Balance       decimal.Decimal `json:"balance"`
	Bank          string          `json:"bank"`
	AccountHolder *string         `json:"account_holder"` // nil when the holder code has no mapping
}

// Amount returns the signed cash flow of the transaction
func (t Transaction) Amount() decimal.Decimal {
	return t.Credit.Add(t.Debit)
}

// Before reports whether t sorts ahead of u: earlier date first, then larger credit first
func (t Transaction) Before(u Transaction) bool {
	if !t.Date.Equal(u.Date) {
		return t.Date.Before(u.Date)
	}
	return t.Credit.GreaterThan(u.Credit)
}

// Compare orders transactions for slices.SortStableFunc
func Compare(a, b Transaction) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}

// Ledger holds the consolidated transactions of every account
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	ProcessedAt  time.Time     `json:"processed_at"`
}

// AddTransaction appends a transaction to the ledger
func (l *Ledger) AddTransaction(t Transaction) {
	l.Transactions = append(l.Transactions, t)
	l.Total = len(l.Transactions)
}

// Sort orders the ledger by date ascending, then credit descending.
// Rows that tie on both keep their relative order.
func (l *Ledger) Sort() {
	slices.SortStableFunc(l.Transactions, Compare)
}

// RecomputeBalances sets every balance to the running sum of Credit + Debit in current order
func (l *Ledger) RecomputeBalances() {
	running := decimal.Zero
	for i := range l.Transactions {
		running = running.Add(l.Transactions[i].Amount())
		l.Transactions[i].Balance = running
	}
}

// Verify checks the ledger for sort order, non-positive debits,
// non-negative credits, and balances equal to the running signed sum.
func (l *Ledger) Verify() error {
	running := decimal.Zero
	for i, t := range l.Transactions {
		if t.Credit.IsNegative() {
			return fmt.Errorf("row %d: negative credit %s", i, t.Credit)
		}
		if t.Debit.IsPositive() {
			return fmt.Errorf("row %d: positive debit %s", i, t.Debit)
		}
		if i > 0 && t.Before(l.Transactions[i-1]) {
			return fmt.Errorf("row %d: out of order", i)
		}
		running = running.Add(t.Amount())
		if !running.Equal(t.Balance) {
			return fmt.Errorf("row %d: balance %s, want %s", i, t.Balance, running)
		}
	}
	return nil
}

// GetByBank returns all transactions of the given bank
func (l *Ledger) GetByBank(bank string) []Transaction {
	var filtered []Transaction
	for _, t := range l.Transactions {
		if t.Bank == bank {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// GetByAccountHolder returns all transactions of the given account holder.
// An empty name matches transactions with no resolved holder.
func (l *Ledger) GetByAccountHolder(name string) []Transaction {
	var filtered []Transaction
	for _, t := range l.Transactions {
		if HolderName(t.AccountHolder) == name {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// HolderName dereferences an account holder, returning "" for nil
func HolderName(holder *string) string {
	if holder == nil {
		return ""
	}
	return *holder
}

// AccountRef identifies one bank account in the ledger by display names
type AccountRef struct {
	Bank          string `json:"bank"`
	AccountHolder string `json:"account_holder"`
}

// Accounts returns the distinct accounts in the ledger, sorted by bank then holder
func (l *Ledger) Accounts() []AccountRef {
	seen := make(map[AccountRef]bool)
	var refs []AccountRef
	for _, t := range l.Transactions {
		ref := AccountRef{Bank: t.Bank, AccountHolder: HolderName(t.AccountHolder)}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	slices.SortFunc(refs, func(a, b AccountRef) int {
		if a.Bank != b.Bank {
			return strings.Compare(a.Bank, b.Bank)
		}
		return strings.Compare(a.AccountHolder, b.AccountHolder)
	})
	return refs
}
