package task

import (
	"time"

	"github.com/prepline/prepline/batch"
)

// Rates maps worker IDs to hourly wages. Workers missing from the map
// contribute zero to labor cost.
type Rates map[string]float64

// BatchSource resolves batch definitions for costing.
type BatchSource interface {
	Batch(id string) (*batch.Batch, bool)
}

// ElapsedSeconds returns the task's total worked time in seconds: the sum of
// its session lengths minus pause time, with the active session bounded at
// now (or at the start of the current pause, while paused).
func ElapsedSeconds(rec Record, now time.Time) int {
	if len(rec.Sessions) == 0 {
		return legacyElapsedSeconds(rec.Task, now)
	}

	total := 0
	for _, s := range rec.Sessions {
		end := now
		if s.EndedAt != nil && s.EndedAt.Before(end) {
			end = *s.EndedAt
		}
		if s.EndedAt == nil && rec.Task.PausedAt != nil {
			end = *rec.Task.PausedAt
		}
		secs := int(end.Sub(s.StartedAt).Seconds()) - s.PauseDurationSeconds
		if secs > 0 {
			total += secs
		}
	}
	return total
}

// legacyElapsedSeconds computes elapsed time from task-level timestamps for
// tasks recorded before sessions existed.
func legacyElapsedSeconds(t Task, now time.Time) int {
	if t.StartedAt == nil {
		return 0
	}
	end := now
	switch {
	case t.FinishedAt != nil:
		end = *t.FinishedAt
	case t.PausedAt != nil:
		end = *t.PausedAt
	}
	secs := int(end.Sub(*t.StartedAt).Seconds()) - t.TotalPauseSeconds
	if secs < 0 {
		return 0
	}
	return secs
}

// ElapsedMinutes returns the task's worked time in whole minutes, rounded
// down.
func ElapsedMinutes(rec Record, now time.Time) int {
	return ElapsedSeconds(rec, now) / 60
}

// LaborCost returns the task's labor cost: elapsed hours multiplied by the
// combined hourly wage of every assigned worker.
func LaborCost(rec Record, rates Rates, now time.Time) float64 {
	hours := float64(ElapsedSeconds(rec, now)) / 3600
	var wage float64
	for _, id := range rec.Task.AssignedWorkerIDs {
		wage += rates[id]
	}
	return hours * wage
}

// ActualBatchCost returns the batch's cost using the labor actually spent on
// its most recently completed task: recipe cost plus actual labor. When no
// task for the batch has completed, it falls back to the batch's estimated
// cost. The second return reports whether the cost reflects actual labor.
func ActualBatchCost(store Store, batches BatchSource, batchID string, rates Rates, now time.Time) (float64, bool, error) {
	b, ok := batches.Batch(batchID)
	if !ok {
		return 0, false, nil
	}

	rec, err := store.MostRecentCompletedForBatch(batchID)
	if err != nil {
		return 0, false, err
	}
	if rec == nil {
		return b.EstimatedCost(), false, nil
	}

	return b.RecipeCost + LaborCost(*rec, rates, now), true, nil
}
