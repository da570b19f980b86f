package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadableFile is returned when no loading strategy can decode a file
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrNoTabularDataFound is returned when no line of a text file has enough columns to be a header
	ErrNoTabularDataFound = errors.New("no tabular data found")
	// ErrBinaryContent is returned by the text strategies for content that is not text
	ErrBinaryContent = errors.New("binary content")
)

// StrategyError records why one strategy rejected a file
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// UnreadableFileError lists every strategy failure for a file that could not be loaded
type UnreadableFileError struct {
	File     string
	Failures []*StrategyError
}

func (e *UnreadableFileError) Error() string {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return fmt.Sprintf("%s: %v\n%v", e.File, ErrUnreadableFile, errors.Join(errs...))
}

// Is matches ErrUnreadableFile
func (e *UnreadableFileError) Is(target error) bool {
	return target == ErrUnreadableFile
}

// Unwrap exposes the individual strategy failures to errors.Is and errors.As
func (e *UnreadableFileError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
