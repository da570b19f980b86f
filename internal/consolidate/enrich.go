package consolidate

import (
	"fmt"

	"github.com/example/statement-consolidator/internal/bank"
	"github.com/example/statement-consolidator/internal/loader"
	"github.com/example/statement-consolidator/internal/naming"
)

// Statement is one file's entries stamped with its bank and account holder
type Statement struct {
	File          naming.Info
	Bank          string
	AccountHolder *string
	Entries       []bank.Entry
}

// ResolveHolder returns the display name for an account holder code, or nil when unmapped
func ResolveHolder(holders map[string]string, code string) *string {
	name, ok := holders[code]
	if !ok {
		return nil
	}
	return &name
}

// Enrich runs each file through its bank's enricher and stamps the bank
// display name and account holder. Any failure aborts with the file named.
func Enrich(files []loader.File, registry *bank.Registry, holders map[string]string) ([]Statement, error) {
	statements := make([]Statement, 0, len(files))
	for _, f := range files {
		b, err := registry.Lookup(f.Info.Bank)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Info.Name, err)
		}

		entries, err := b.Enricher.Enrich(f.Raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", f.Info.Name, b.Name, err)
		}

		statements = append(statements, Statement{
			File:          f.Info,
			Bank:          b.Name,
			AccountHolder: ResolveHolder(holders, f.Info.AccountHolder),
			Entries:       entries,
		})
	}
	return statements, nil
}
