// Package aligner widens the fetch window ahead of the visible range and trims the
// warm-up rows once indicators have been computed over the widened series.
package aligner

import (
	"errors"
	"fmt"
	"time"

	"TigerChart/internal/model"
)

const (
	// DefaultBufferDays is how many calendar days are fetched ahead of the requested start.
	DefaultBufferDays = 50
	// DefaultTrimRows is how many leading rows are dropped after indicators are computed.
	// It assumes DefaultBufferDays yields at least this many trading days.
	DefaultTrimRows = 30
)

// ErrInsufficientHistory matches every *InsufficientHistoryError.
var ErrInsufficientHistory = errors.New("insufficient history")

// InsufficientHistoryError reports a widened series too short to survive trimming.
type InsufficientHistoryError struct {
	Rows     int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: got %d rows, need at least %d", e.Rows, e.Required)
}

func (e *InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}

// Aligner holds the warm-up buffer and trim settings.
type Aligner struct {
	BufferDays int
	TrimRows   int
}

// New creates an Aligner. Non-positive arguments fall back to the defaults.
func New(bufferDays, trimRows int) *Aligner {
	if bufferDays <= 0 {
		bufferDays = DefaultBufferDays
	}
	if trimRows < 0 {
		trimRows = DefaultTrimRows
	}
	return &Aligner{BufferDays: bufferDays, TrimRows: trimRows}
}

// ExtendStart moves the requested start back by the buffer.
func (a *Aligner) ExtendStart(start time.Time) time.Time {
	return start.AddDate(0, 0, -a.BufferDays)
}

// MinRows is the smallest widened series that leaves one visible row.
func (a *Aligner) MinRows() int {
	return a.TrimRows + 1
}

// Check fails when a widened series of the given length cannot be trimmed.
func (a *Aligner) Check(rows int) error {
	if rows < a.MinRows() {
		return &InsufficientHistoryError{Rows: rows, Required: a.MinRows()}
	}
	return nil
}

// Trim drops the warm-up prefix from every column of the table.
func (a *Aligner) Trim(table *model.EnrichedTable) (*model.EnrichedTable, error) {
	if err := a.Check(table.Len()); err != nil {
		return nil, err
	}
	return table.SliceFrom(a.TrimRows), nil
}

// RequiredWarmup is the longest undefined prefix produced by the configured indicators.
func RequiredWarmup(maWindow, rmiLag int) int {
	w := maWindow - 1
	// RSI differences against the previous day, so its first row is always undefined.
	if w < 1 {
		w = 1
	}
	if rmiLag > w {
		w = rmiLag
	}
	return w
}
