// Package continuity checks that every bank account's statements cover an
// unbroken run of financial years.
package continuity

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/statement-consolidator/internal/naming"
)

// ErrDiscontinuousCoverage is returned when any account is missing a financial year
var ErrDiscontinuousCoverage = errors.New("discontinuous coverage")

// Gap is a financial year with no statement for an account, or with more
// than one statement when Duplicate is set.
type Gap struct {
	Account   naming.Account
	Year      int
	Duplicate bool
}

func (g Gap) String() string {
	if g.Duplicate {
		return naming.FileName(g.Account, g.Year) + " (duplicate)"
	}
	return naming.FileName(g.Account, g.Year)
}

// CoverageError lists every gap across all accounts
type CoverageError struct {
	Gaps []Gap
}

func (e *CoverageError) Error() string {
	lines := make([]string, len(e.Gaps))
	for i, g := range e.Gaps {
		lines[i] = g.String()
	}
	return fmt.Sprintf("%v: files are missing:\n%s", ErrDiscontinuousCoverage, strings.Join(lines, "\n"))
}

// Is matches ErrDiscontinuousCoverage
func (e *CoverageError) Is(target error) bool {
	return target == ErrDiscontinuousCoverage
}

// Years groups the financial years of the given files by bank account
func Years(files []naming.Info) map[naming.Account][]int {
	years := make(map[naming.Account][]int)
	for _, f := range files {
		years[f.Account()] = append(years[f.Account()], f.FinancialYear)
	}
	return years
}

// Validate returns a *CoverageError naming every missing year of every account,
// or nil when all accounts are continuous.
func Validate(files []naming.Info) error {
	var gaps []Gap
	for account, years := range Years(files) {
		if IsContinuous(years) {
			continue
		}
		for _, year := range missing(years) {
			gaps = append(gaps, Gap{Account: account, Year: year})
		}
		for _, year := range duplicates(years) {
			gaps = append(gaps, Gap{Account: account, Year: year, Duplicate: true})
		}
	}
	if len(gaps) == 0 {
		return nil
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Account != gaps[j].Account {
			return gaps[i].Account.Less(gaps[j].Account)
		}
		return gaps[i].Year < gaps[j].Year
	})
	return &CoverageError{Gaps: gaps}
}

// IsContinuous reports whether years form a contiguous integer range with
// each year present exactly once.
func IsContinuous(years []int) bool {
	if len(years) == 0 {
		return true
	}
	lo, hi := bounds(years)
	return len(years) == hi-lo+1 && len(duplicates(years)) == 0
}

// missing returns the years absent from the range spanned by years
func missing(years []int) []int {
	present := make(map[int]bool, len(years))
	for _, y := range years {
		present[y] = true
	}

	lo, hi := bounds(years)
	var out []int
	for y := lo; y <= hi; y++ {
		if !present[y] {
			out = append(out, y)
		}
	}
	return out
}

// duplicates returns the years that appear more than once, ascending
func duplicates(years []int) []int {
	seen := make(map[int]int, len(years))
	for _, y := range years {
		seen[y]++
	}

	var out []int
	for y, n := range seen {
		if n > 1 {
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

func bounds(years []int) (int, int) {
	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	return lo, hi
}
