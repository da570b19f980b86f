package consolidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/statement-consolidator/internal/bank"
	"github.com/example/statement-consolidator/internal/continuity"
	"github.com/example/statement-consolidator/internal/loader"
	"github.com/example/statement-consolidator/internal/logger"
	"github.com/example/statement-consolidator/internal/naming"
	"github.com/example/statement-consolidator/pkg/transaction"
	"github.com/google/uuid"
)

// ErrNoStatements is returned when a directory holds no statement files
var ErrNoStatements = errors.New("no statement files found")

// Pipeline wires discovery, validation, loading, enrichment, merging and consolidation
type Pipeline struct {
	Loader         *loader.Loader
	Registry       *bank.Registry
	AccountHolders map[string]string
	Now            func() time.Time
}

// Report summarizes a run
type Report struct {
	RunID      string
	Discovered []string
	Loaded     []string
	Skipped    []*loader.UnreadableFileError
	Accounts   []naming.Account
}

// Validate discovers the statement files in dir and checks the hard
// preconditions: continuous coverage and a registered bank for every file.
func (p *Pipeline) Validate(dir string) ([]naming.Info, error) {
	files, err := p.Loader.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("Validate: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("Validate: %s: %w", dir, ErrNoStatements)
	}

	if err := continuity.Validate(files); err != nil {
		return nil, err
	}

	var unsupported []error
	for _, f := range files {
		if _, err := p.Registry.Lookup(f.Bank); err != nil {
			unsupported = append(unsupported, fmt.Errorf("%s: %w", f.Name, err))
		}
	}
	if len(unsupported) > 0 {
		return nil, errors.Join(unsupported...)
	}

	return files, nil
}

// Run consolidates every statement in dir into one ledger.
// Unreadable files are skipped and listed in the report; every other failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, dir string) (*transaction.Ledger, *Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"run_id": report.RunID,
		"dir":    dir,
	})

	// 1. Discover files and enforce the preconditions.
	files, err := p.Validate(dir)
	if err != nil {
		return nil, report, err
	}
	for _, f := range files {
		report.Discovered = append(report.Discovered, f.Name)
	}
	log.Info().Int("files", len(files)).Msg("discovered statements")

	// 2. Load raw tables.
	loaded, err := p.Loader.LoadAll(ctx, dir, files)
	if err != nil {
		return nil, report, fmt.Errorf("Run: load: %w", err)
	}
	report.Skipped = loaded.Skipped
	for _, f := range loaded.Files {
		report.Loaded = append(report.Loaded, f.Info.Name)
	}

	// 3. Map each bank layout to canonical entries.
	statements, err := Enrich(loaded.Files, p.Registry, p.AccountHolders)
	if err != nil {
		return nil, report, fmt.Errorf("Run: enrich: %w", err)
	}
	for _, s := range statements {
		log.Debug().Str("file", s.File.Name).Str("bank", s.Bank).Int("entries", len(s.Entries)).Msg("enriched statement")
	}

	// 4. Merge years per account and sign the flows.
	accounts := Merge(statements)
	signed := make([][]transaction.Transaction, 0, len(accounts))
	for _, acc := range accounts {
		report.Accounts = append(report.Accounts, acc.Key)
		txs := Sign(acc)
		if len(txs) == 0 {
			log.Warn().Str("account", acc.Key.String()).Msg("account has no transactions")
			continue
		}
		signed = append(signed, txs)
	}

	// 5. Consolidate into one ledger.
	ledger := Consolidate(signed, p.now())
	log.Info().Int("accounts", len(accounts)).Int("transactions", ledger.Total).
		Int("skipped", len(report.Skipped)).Msg("consolidated ledger")

	return ledger, report, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
