// Package bank maps each supported bank's raw export layout to canonical
// statement entries.
package bank

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/statement-consolidator/internal/table"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedBank is returned for a bank code with no registered enricher
	ErrUnsupportedBank = errors.New("unsupported bank")
	// ErrShapeMismatch is returned when a raw table lacks the columns an enricher expects
	ErrShapeMismatch = errors.New("unexpected statement layout")
	// ErrUnparseableValue is returned when a date or amount cell cannot be read
	ErrUnparseableValue = errors.New("unparseable value")
)

// Entry is one statement line in canonical form. Debit and Credit are
// non-negative; Balance is the running balance reported by the bank.
type Entry struct {
	Date        time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
}

// Enricher converts a bank's raw export into entries
type Enricher interface {
	Enrich(raw table.Raw) ([]Entry, error)
}

// Bank is a registry entry
type Bank struct {
	Code     string
	Name     string
	Enricher Enricher
}

// Registry maps bank short codes to banks
type Registry struct {
	banks map[string]Bank
}

// NewRegistry builds a registry from the given banks.
// Panics if two banks share a code.
func NewRegistry(banks ...Bank) *Registry {
	r := &Registry{banks: make(map[string]Bank, len(banks))}
	for _, b := range banks {
		r.Register(b)
	}
	return r
}

// DefaultRegistry returns the banks supported out of the box
func DefaultRegistry() *Registry {
	return NewRegistry(
		Bank{Code: "CB", Name: "Canara Bank", Enricher: Canara{}},
		Bank{Code: "ICICI", Name: "ICICI Bank", Enricher: ICICI{HeaderOffset: ICICIHeaderOffset}},
		Bank{Code: "SBI", Name: "State Bank of India", Enricher: SBI{}},
	)
}

// Register adds a bank. Panics if the code is already registered.
func (r *Registry) Register(b Bank) {
	if _, exists := r.banks[b.Code]; exists {
		panic(fmt.Sprintf("bank already registered: %s", b.Code))
	}
	r.banks[b.Code] = b
}

// Lookup returns the bank registered under code
func (r *Registry) Lookup(code string) (Bank, error) {
	b, ok := r.banks[code]
	if !ok {
		return Bank{}, fmt.Errorf("%w: %q", ErrUnsupportedBank, code)
	}
	return b, nil
}

// All returns every registered bank sorted by code
func (r *Registry) All() []Bank {
	out := make([]Bank, 0, len(r.banks))
	for _, b := range r.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}
