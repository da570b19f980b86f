// Package naming parses statement file names of the form
// <account_holder>_<bank>_<financial_year>.<extension>.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedFileName is returned when a file name does not follow the naming convention
var ErrMalformedFileName = errors.New("malformed file name")

var (
	partsPattern  = regexp.MustCompile(`^([^_]+)_([^_]+)_([^_]+)\.(\w+)$`)
	filterPattern = regexp.MustCompile(`^[A-Z]+_[A-Z]+_\d{4}\.\w+$`)
)

// Info holds the parts encoded in a statement file name
type Info struct {
	Name          string
	AccountHolder string
	Bank          string
	FinancialYear int
	Extension     string
}

// Account returns the bank account the file belongs to
func (i Info) Account() Account {
	return Account{Bank: i.Bank, AccountHolder: i.AccountHolder}
}

// Account identifies a bank account by bank code and account holder code
type Account struct {
	Bank          string
	AccountHolder string
}

func (a Account) String() string {
	return a.Bank + "_" + a.AccountHolder
}

// Less orders accounts by bank, then account holder
func (a Account) Less(b Account) bool {
	if a.Bank != b.Bank {
		return a.Bank < b.Bank
	}
	return a.AccountHolder < b.AccountHolder
}

// Matches reports whether name passes the discovery filter.
// Names that match are guaranteed to Parse successfully.
func Matches(name string) bool {
	return filterPattern.MatchString(name)
}

// Parse splits a file name into account holder, bank, financial year and extension
func Parse(name string) (Info, error) {
	m := partsPattern.FindStringSubmatch(name)
	if m == nil {
		return Info{}, fmt.Errorf("%w: %q", ErrMalformedFileName, name)
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return Info{}, fmt.Errorf("%w: %q: financial year %q is not numeric", ErrMalformedFileName, name, m[3])
	}

	return Info{
		Name:          name,
		AccountHolder: m[1],
		Bank:          m[2],
		FinancialYear: year,
		Extension:     m[4],
	}, nil
}

// FileName builds the statement file name for an account and year, without extension
func FileName(account Account, year int) string {
	return fmt.Sprintf("%s_%s_%d", account.AccountHolder, account.Bank, year)
}
