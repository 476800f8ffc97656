/*
store.go - Persistence interface for archived settlement runs

PURPOSE:
  The engine itself never persists anything. Outer layers (the HTTP API,
  the CLI) may archive a run - its inputs and its Result - so that a
  what-if can be reopened, compared or reported on later.

CONTRACT:
  - Save rejects a run whose ID already exists (ErrDuplicateRun)
  - Get returns ErrRunNotFound for an unknown ID
  - List returns summaries, newest first
  - DeleteBefore is the only removal, used by the retention scheduler

IMPLEMENTATIONS:
  - settlement/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite archive

SEE ALSO:
  - api/retention.go: Periodic DeleteBefore
*/
package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RunID identifies an archived settlement run.
type RunID string

// Run is one archived settlement: the inputs and the computed result.
type Run struct {
	ID        RunID
	Edition   string
	Label     string
	Decisions Decisions
	State     PeriodState
	Forecast  Forecast
	Result    *Result
	CreatedAt time.Time
}

// RunSummary is the listing view of a run.
type RunSummary struct {
	ID           RunID
	Edition      string
	Label        string
	Quarter      int
	WarningCount int
	NetResult    decimal.Decimal
	EndingCash   decimal.Decimal
	CreatedAt    time.Time
}

// Summary derives the listing view of a run.
func (r Run) Summary() RunSummary {
	s := RunSummary{
		ID:        r.ID,
		Edition:   r.Edition,
		Label:     r.Label,
		Quarter:   r.State.Quarter,
		CreatedAt: r.CreatedAt,
	}
	if r.Result != nil {
		s.WarningCount = len(r.Result.Warnings)
		s.NetResult = r.Result.Income.NetResult
		s.EndingCash = r.Result.Cash.Ending
	}
	return s
}

// RunFilter narrows a listing. Zero values match everything; a zero Limit
// means no limit.
type RunFilter struct {
	Edition string
	Quarter int
	Limit   int
}

// Matches reports whether a run falls within the filter.
func (f RunFilter) Matches(r RunSummary) bool {
	if f.Edition != "" && f.Edition != r.Edition {
		return false
	}
	if f.Quarter != 0 && f.Quarter != r.Quarter {
		return false
	}
	return true
}

// RunStore archives settlement runs.
type RunStore interface {
	// Save archives a run. Returns ErrDuplicateRun if the ID exists.
	Save(ctx context.Context, run Run) error

	// Get returns one run. Returns ErrRunNotFound if absent.
	Get(ctx context.Context, id RunID) (Run, error)

	// List returns summaries matching the filter, newest first.
	List(ctx context.Context, filter RunFilter) ([]RunSummary, error)

	// DeleteBefore removes runs created before the cutoff and returns how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
