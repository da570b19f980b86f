// Package loader discovers statement files in a directory and decodes each
// one into a raw table, trying spreadsheet engines before delimited text.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/example/statement-consolidator/internal/naming"
	"github.com/example/statement-consolidator/internal/table"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options configures a Loader
type Options struct {
	MinColumns int
	Workers    int
}

// Loader decodes statement files using an ordered list of strategies
type Loader struct {
	strategies []Strategy
	workers    int
	log        zerolog.Logger
}

// File is a successfully decoded statement file
type File struct {
	Info     naming.Info
	Raw      table.Raw
	Strategy string
}

// Result holds the loaded files, sorted by name, and the files that were skipped
type Result struct {
	Files   []File
	Skipped []*UnreadableFileError
}

// New creates a Loader with the spreadsheet engines followed by the text strategies
func New(opts Options, log zerolog.Logger) *Loader {
	if opts.MinColumns < 1 {
		opts.MinColumns = DefaultMinColumns
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	strategies := append(SpreadsheetEngines(), TextStrategies(opts.MinColumns)...)
	return NewWithStrategies(strategies, opts.Workers, log)
}

// NewWithStrategies creates a Loader with a custom strategy order
func NewWithStrategies(strategies []Strategy, workers int, log zerolog.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{strategies: strategies, workers: workers, log: log}
}

// Discover lists the regular files in dir whose names pass the naming filter, sorted by name
func (l *Loader) Discover(dir string) ([]naming.Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []naming.Info
	for _, entry := range entries {
		name := entry.Name()
		if !naming.Matches(name) {
			l.log.Debug().Str("file", name).Msg("ignoring file outside naming convention")
			continue
		}

		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		info, err := naming.Parse(name)
		if err != nil {
			return nil, err
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// LoadFile decodes one file, returning the raw table and the name of the strategy that succeeded
func (l *Loader) LoadFile(path string) (table.Raw, string, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return table.Raw{}, "", &UnreadableFileError{
			File:     name,
			Failures: []*StrategyError{{Strategy: "read", Err: err}},
		}
	}

	var failures []*StrategyError
	for _, s := range l.strategies {
		raw, err := s.Load(data)
		if err == nil {
			return raw, s.Name(), nil
		}
		l.log.Debug().Str("file", name).Str("strategy", s.Name()).Err(err).Msg("strategy failed")
		failures = append(failures, &StrategyError{Strategy: s.Name(), Err: err})
	}

	return table.Raw{}, "", &UnreadableFileError{File: name, Failures: failures}
}

// LoadAll decodes every file in dir. Unreadable files are skipped and reported
// in the result; only context cancellation aborts the load.
func (l *Loader) LoadAll(ctx context.Context, dir string, files []naming.Info) (*Result, error) {
	var (
		mu     sync.Mutex
		result Result
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for _, info := range files {
		info := info
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			raw, strategy, err := l.LoadFile(filepath.Join(dir, info.Name))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.log.Warn().Str("file", info.Name).Err(err).Msg("skipping unreadable file")
				result.Skipped = append(result.Skipped, asUnreadable(info.Name, err))
				return nil
			}
			l.log.Info().Str("file", info.Name).Str("strategy", strategy).Msg("processed file")
			result.Files = append(result.Files, File{Info: info, Raw: raw, Strategy: strategy})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Info.Name < result.Files[j].Info.Name
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].File < result.Skipped[j].File
	})

	loaded := make([]string, len(result.Files))
	for i, f := range result.Files {
		loaded[i] = f.Info.Name
	}
	l.log.Info().Strs("files", loaded).Msgf("loaded %d of %d files", len(result.Files), len(files))

	return &result, nil
}

func asUnreadable(name string, err error) *UnreadableFileError {
	if u, ok := err.(*UnreadableFileError); ok {
		return u
	}
	return &UnreadableFileError{File: name, Failures: []*StrategyError{{Strategy: "load", Err: err}}}
}
