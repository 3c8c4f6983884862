// Package task implements the day's work-item tracker: the Task and Session
// model, the lifecycle controller that moves tasks between states, the labor
// cost calculator, and the store that persists it all.
//
// A task is one trackable unit of work for an operational day: make a batch,
// restock an inventory item, perform a janitorial duty, or a free-form manual
// entry. Work on a task happens in sessions; reopening a completed task opens
// a new session, so elapsed time accumulates across interruptions.
package task

import "time"

// Task represents a single work item for a day.
type Task struct {
	// ID is a unique identifier (8-char alphanumeric, derived from the
	// initial description + timestamp).
	ID string `json:"id"`

	// DayID identifies the operational day the task belongs to.
	DayID string `json:"day_id"`

	// At most one of the following links is set. A task with none of them
	// is a free-form manual entry categorized by Category.
	InventoryItemID string `json:"inventory_item_id,omitempty"`
	BatchID         string `json:"batch_id,omitempty"`
	JanitorialID    string `json:"janitorial_id,omitempty"`

	// ItemBatchID is the batch linked to the task's inventory item, captured
	// at creation so batch costing and finish auto-computation can resolve
	// the batch without consulting the inventory collaborator again.
	ItemBatchID string `json:"item_batch_id,omitempty"`

	// ItemName and RecipeName are captured for description and display.
	ItemName   string `json:"item_name,omitempty"`
	RecipeName string `json:"recipe_name,omitempty"`

	// Category is the manual category for unlinked tasks. ItemCategory and
	// BatchCategory are captured from the linked entities for icon
	// resolution.
	Category      string `json:"category,omitempty"`
	ItemCategory  string `json:"item_category,omitempty"`
	BatchCategory string `json:"batch_category,omitempty"`

	// Description is the display text for the task.
	Description string `json:"description"`

	// AssignedWorkerIDs is the ordered list of assigned workers.
	// The first element is the primary assignee.
	AssignedWorkerIDs []string `json:"assigned_worker_ids,omitempty"`

	// StartedAt is set once by the first start and never cleared. Any task
	// with it set is immutable to the reconciliation engine.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// PausedAt is the start of the current pause interval (nil when not
	// paused).
	PausedAt *time.Time `json:"paused_at,omitempty"`

	// FinishedAt is when the task completed (nil while open; cleared by
	// reopen).
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// TotalPauseSeconds accumulates pause time across all sessions.
	TotalPauseSeconds int `json:"total_pause_seconds"`

	// ScaleKey and ScaleFactor record the production scale chosen at start
	// for batch-linked tasks.
	ScaleKey    string   `json:"scale_key,omitempty"`
	ScaleFactor *float64 `json:"scale_factor,omitempty"`

	// MadeAmount and MadeUnit record the production output of a finished
	// task. MadeAmountRequired marks tasks whose linked item demands a
	// recorded amount at finish.
	MadeAmount         *float64 `json:"made_amount,omitempty"`
	MadeUnit           string   `json:"made_unit,omitempty"`
	MadeAmountRequired bool     `json:"made_amount_required,omitempty"`

	// AutoGenerated marks tasks created by the reconciliation engine.
	AutoGenerated bool `json:"auto_generated"`

	// Snapshot holds the inventory values captured when the reconciliation
	// engine created or refreshed the task. Populated only for
	// inventory-driven auto-generated tasks.
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// Notes is free text: worker notes, or janitorial instructions for
	// janitorial tasks.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot captures the inventory inputs an auto-generated task was created
// from. The reconciliation engine compares it against current inputs to
// detect drift.
type Snapshot struct {
	Quantity       float64 `json:"quantity"`
	ParLevel       float64 `json:"par_level"`
	OverrideCreate bool    `json:"override_create"`
	OverrideNoTask bool    `json:"override_no_task"`
}

// Equal reports whether two snapshots carry the same inputs.
func (s Snapshot) Equal(other Snapshot) bool {
	return s == other
}

// Status derives the task's lifecycle state from its timestamps. The
// timestamps are authoritative; status is never stored separately.
func (t *Task) Status() Status {
	switch {
	case t.FinishedAt != nil:
		return StatusCompleted
	case t.PausedAt != nil:
		return StatusPaused
	case t.StartedAt != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// PrimaryWorkerID returns the first assigned worker, or "" when unassigned.
func (t *Task) PrimaryWorkerID() string {
	if len(t.AssignedWorkerIDs) == 0 {
		return ""
	}
	return t.AssignedWorkerIDs[0]
}

// Started reports whether the task has ever been started.
func (t *Task) Started() bool {
	return t.StartedAt != nil
}

// BatchRef returns the batch the task produces into: the direct batch link,
// or the batch behind the linked inventory item.
func (t *Task) BatchRef() string {
	if t.BatchID != "" {
		return t.BatchID
	}
	return t.ItemBatchID
}
