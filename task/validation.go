package task

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDay         = errors.New("task has no day")
	ErrMissingDescription = errors.New("task has no description")
	ErrConflictingLinks   = errors.New("task links more than one source entity")
	ErrNegativePause      = errors.New("task has negative pause time")
	ErrTimestampOrder     = errors.New("task timestamps are out of order")
)

// Validate checks the task's structural invariants. It is called before
// every write, so a store never persists a task that violates them.
func (t *Task) Validate() error {
	if t.DayID == "" {
		return ErrMissingDay
	}
	if t.Description == "" {
		return ErrMissingDescription
	}

	links := 0
	for _, id := range []string{t.InventoryItemID, t.BatchID, t.JanitorialID} {
		if id != "" {
			links++
		}
	}
	if links > 1 {
		return fmt.Errorf("%w: item=%q batch=%q janitorial=%q",
			ErrConflictingLinks, t.InventoryItemID, t.BatchID, t.JanitorialID)
	}

	if t.TotalPauseSeconds < 0 {
		return fmt.Errorf("%w: %d seconds", ErrNegativePause, t.TotalPauseSeconds)
	}

	if t.StartedAt == nil && (t.PausedAt != nil || t.FinishedAt != nil) {
		return fmt.Errorf("%w: paused or finished without start", ErrTimestampOrder)
	}
	if t.StartedAt != nil && t.FinishedAt != nil && t.FinishedAt.Before(*t.StartedAt) {
		return fmt.Errorf("%w: finished %s before started %s",
			ErrTimestampOrder, t.FinishedAt.Format("15:04:05"), t.StartedAt.Format("15:04:05"))
	}

	if t.ScaleFactor != nil && *t.ScaleFactor <= 0 {
		return fmt.Errorf("scale factor must be positive, got %v", *t.ScaleFactor)
	}

	return nil
}
