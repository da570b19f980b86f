package consolidate

import (
	"slices"
	"sort"

	"github.com/example/statement-consolidator/internal/bank"
	"github.com/example/statement-consolidator/internal/naming"
)

// Account is the merged history of one bank account across financial years.
// Entries still carry the balances reported by the bank.
type Account struct {
	Key           naming.Account
	Bank          string
	AccountHolder *string
	Entries       []bank.Entry
}

// compareEntries orders by date ascending, then credit descending
func compareEntries(a, b bank.Entry) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return b.Credit.Cmp(a.Credit)
}

// Merge concatenates the statements of each bank account and sorts every
// account's entries. Accounts are returned ordered by bank code, then holder code.
func Merge(statements []Statement) []Account {
	byKey := make(map[naming.Account]*Account)
	for _, s := range statements {
		key := s.File.Account()
		acc, ok := byKey[key]
		if !ok {
			acc = &Account{Key: key, Bank: s.Bank, AccountHolder: s.AccountHolder}
			byKey[key] = acc
		}
		acc.Entries = append(acc.Entries, s.Entries...)
	}

	accounts := make([]Account, 0, len(byKey))
	for _, acc := range byKey {
		slices.SortStableFunc(acc.Entries, compareEntries)
		accounts = append(accounts, *acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Key.Less(accounts[j].Key)
	})
	return accounts
}
