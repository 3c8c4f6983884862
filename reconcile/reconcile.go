// Package reconcile keeps a day's auto-generated task set in sync with the
// day's inventory levels and janitorial schedule. Runs are idempotent: the
// engine diffs the tasks that should exist against the tasks that do, and
// only touches the difference. A task that has ever been started is never
// modified or deleted, no matter what the inputs say.
package reconcile

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/prepline/prepline/internal/ids"
	"github.com/prepline/prepline/notify"
	"github.com/prepline/prepline/task"
)

var (
	// ErrMissingItemRef is reported for an inventory line with no item ID.
	ErrMissingItemRef = errors.New("line has no item id")

	// ErrMissingJanitorialRef is reported for a janitorial line with no ID.
	ErrMissingJanitorialRef = errors.New("line has no janitorial id")

	// ErrDuplicateLine is reported when the same entity appears twice in
	// one run's inputs.
	ErrDuplicateLine = errors.New("duplicate line")

	// ErrMissingDay is returned when the inputs name no day.
	ErrMissingDay = errors.New("reconcile inputs have no day")
)

// ItemLine is one inventory item's inputs to a reconciliation run.
type ItemLine struct {
	ItemID   string `yaml:"id" json:"item_id"`
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	// BatchID links the item to the batch that replenishes it. Items
	// without a batch get restock tasks instead of make tasks.
	BatchID       string `yaml:"batch_id,omitempty" json:"batch_id,omitempty"`
	RecipeName    string `yaml:"recipe_name,omitempty" json:"recipe_name,omitempty"`
	BatchCategory string `yaml:"batch_category,omitempty" json:"batch_category,omitempty"`

	Quantity float64 `yaml:"quantity" json:"quantity"`
	ParLevel float64 `yaml:"par_level" json:"par_level"`

	// OverrideCreate forces a task even when stock is at par.
	// OverrideNoTask suppresses the task even when stock is low, and wins
	// when both are set.
	OverrideCreate bool `yaml:"override_create,omitempty" json:"override_create,omitempty"`
	OverrideNoTask bool `yaml:"override_no_task,omitempty" json:"override_no_task,omitempty"`

	// RequiresMadeAmount marks items whose tasks must record production
	// output at finish.
	RequiresMadeAmount bool   `yaml:"requires_made_amount,omitempty" json:"requires_made_amount,omitempty"`
	MadeUnit           string `yaml:"made_unit,omitempty" json:"made_unit,omitempty"`
}

// NeedsTask reports whether the line's current inputs call for a task.
func (l ItemLine) NeedsTask() bool {
	if l.OverrideNoTask {
		return false
	}
	return l.Quantity < l.ParLevel || l.OverrideCreate
}

// Snapshot captures the line's decision inputs for drift detection on later
// runs.
func (l ItemLine) Snapshot() task.Snapshot {
	return task.Snapshot{
		Quantity:       l.Quantity,
		ParLevel:       l.ParLevel,
		OverrideCreate: l.OverrideCreate,
		OverrideNoTask: l.OverrideNoTask,
	}
}

// Description is the display text for the line's task.
func (l ItemLine) Description() string {
	if l.BatchID != "" && l.RecipeName != "" {
		return fmt.Sprintf("Make %s - %s", l.Name, l.RecipeName)
	}
	return fmt.Sprintf("Restock %s", l.Name)
}

// JanitorialLine is one janitorial duty's inputs to a reconciliation run.
type JanitorialLine struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Schedule is "daily" or "manual". Daily duties always belong on the
	// day's list; manual duties belong only while Include is set, and
	// their tasks are deleted when it is cleared.
	Schedule string `yaml:"schedule" json:"schedule"`
	Include  bool   `yaml:"include,omitempty" json:"include,omitempty"`

	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
}

const (
	ScheduleDaily  = "daily"
	ScheduleManual = "manual"
)

// Included reports whether the duty belongs on the day's list.
func (l JanitorialLine) Included() bool {
	return l.Schedule == ScheduleDaily || (l.Schedule == ScheduleManual && l.Include)
}

// LineError records a recoverable problem with one input line. The run
// continues past it.
type LineError struct {
	Line string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %s: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Inputs is everything one reconciliation run needs.
type Inputs struct {
	DayID      string
	Items      []ItemLine
	Janitorial []JanitorialLine

	// ForceRegenerate deletes every task for the day that has not been
	// started, then reconciles as if none had existed.
	ForceRegenerate bool
}

// Result summarizes what a run did.
type Result struct {
	Created   []string
	Deleted   []string
	Refreshed []string
	Kept      []string

	LineErrors []LineError
}

// Engine reconciles a day's task set against its inputs.
type Engine struct {
	store    task.Store
	notifier notify.Notifier
	now      func() time.Time
	logf     func(format string, args ...any)
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Notifier notify.Notifier
	Now      func() time.Time
	Logf     func(format string, args ...any)
}

// NewEngine returns an Engine over the given store.
func NewEngine(store task.Store, opts EngineOptions) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Engine{store: store, notifier: opts.Notifier, now: now, logf: logf}
}

// Run reconciles the day in one store transaction. Recoverable input
// problems are collected in Result.LineErrors; only store failures abort
// the run.
func (e *Engine) Run(in Inputs) (Result, error) {
	if in.DayID == "" {
		return Result{}, ErrMissingDay
	}

	var res Result
	err := e.store.Apply(func(st *task.State) error {
		res = e.reconcile(st, in)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	for _, le := range res.LineErrors {
		e.logf("reconcile %s: %v", in.DayID, le)
	}
	e.publishCreated(in.DayID, res)
	e.publishSummary(in.DayID, res)
	return res, nil
}

func (e *Engine) publishCreated(dayID string, res Result) {
	if e.notifier == nil {
		return
	}
	for _, id := range res.Created {
		_ = e.notifier.Publish(notify.NewEvent(notify.EventTaskCreated, dayID, id, "", e.now()))
	}
}

func (e *Engine) reconcile(st *task.State, in Inputs) Result {
	var res Result
	now := e.now()

	// Force-regeneration wipes the slate: every task for the day goes,
	// started tasks excepted, and the run proceeds as if none had existed.
	if in.ForceRegenerate {
		var doomed []string
		for _, t := range st.Tasks() {
			if t.DayID == in.DayID && !t.Started() {
				doomed = append(doomed, t.ID)
			}
		}
		for _, id := range doomed {
			st.Delete(id)
			res.Deleted = append(res.Deleted, id)
		}
	}

	// Index the day's existing entity-linked tasks by source entity,
	// manually created ones included: a manual task linked to an item or
	// duty stands in for the generated one, and is subject to the same
	// deletion rules. Copies, not pointers: deletions compact the state's
	// task slice.
	byItem := map[string]task.Task{}
	byJanitorial := map[string]task.Task{}
	for _, t := range st.Tasks() {
		if t.DayID != in.DayID {
			continue
		}
		switch {
		case t.InventoryItemID != "":
			byItem[t.InventoryItemID] = t
		case t.JanitorialID != "":
			byJanitorial[t.JanitorialID] = t
		}
	}

	seenItems := map[string]bool{}
	for _, line := range in.Items {
		if line.ItemID == "" {
			res.LineErrors = append(res.LineErrors, LineError{Line: line.Name, Err: ErrMissingItemRef})
			continue
		}
		if seenItems[line.ItemID] {
			res.LineErrors = append(res.LineErrors, LineError{Line: line.ItemID, Err: ErrDuplicateLine})
			continue
		}
		seenItems[line.ItemID] = true

		existing, exists := byItem[line.ItemID]
		delete(byItem, line.ItemID)
		e.reconcileItem(st, in, line, existing, exists, now, &res)
	}

	seenJanitorial := map[string]bool{}
	for _, line := range in.Janitorial {
		if line.ID == "" {
			res.LineErrors = append(res.LineErrors, LineError{Line: line.Name, Err: ErrMissingJanitorialRef})
			continue
		}
		if seenJanitorial[line.ID] {
			res.LineErrors = append(res.LineErrors, LineError{Line: line.ID, Err: ErrDuplicateLine})
			continue
		}
		seenJanitorial[line.ID] = true

		existing, exists := byJanitorial[line.ID]
		delete(byJanitorial, line.ID)
		e.reconcileJanitorial(st, in, line, existing, exists, now, &res)
	}

	// Auto-generated tasks whose source entity vanished from the inputs are
	// orphans: remove them unless started.
	for _, t := range byItem {
		e.remove(st, t, &res)
	}
	for _, t := range byJanitorial {
		e.remove(st, t, &res)
	}

	return res
}

func (e *Engine) remove(st *task.State, t task.Task, res *Result) {
	if t.Started() {
		res.Kept = append(res.Kept, t.ID)
		return
	}
	st.Delete(t.ID)
	res.Deleted = append(res.Deleted, t.ID)
}

func (e *Engine) reconcileItem(st *task.State, in Inputs, line ItemLine, existing task.Task, exists bool, now time.Time, res *Result) {
	needed := line.NeedsTask()

	if exists {
		// A started task is a record of real work. It survives every
		// input change, including force-regeneration.
		if existing.Started() {
			res.Kept = append(res.Kept, existing.ID)
			return
		}
		if !needed {
			e.remove(st, existing, res)
			return
		}
		stale := existing.Snapshot == nil ||
			!existing.Snapshot.Equal(line.Snapshot())
		if !stale {
			res.Kept = append(res.Kept, existing.ID)
			return
		}
		st.Delete(existing.ID)
		res.Refreshed = append(res.Refreshed, existing.ID)
	}

	if !needed {
		return
	}

	snap := line.Snapshot()
	t := task.Task{
		ID:                 ids.GenerateWithTimestamp(in.DayID+":"+line.ItemID, now, ids.DefaultLength),
		DayID:              in.DayID,
		InventoryItemID:    line.ItemID,
		ItemBatchID:        line.BatchID,
		ItemName:           line.Name,
		RecipeName:         line.RecipeName,
		ItemCategory:       line.Category,
		BatchCategory:      line.BatchCategory,
		Description:        line.Description(),
		MadeUnit:           line.MadeUnit,
		MadeAmountRequired: line.RequiresMadeAmount,
		AutoGenerated:      true,
		Snapshot:           &snap,
		CreatedAt:          now,
	}
	st.Put(t)
	res.Created = append(res.Created, t.ID)
}

func (e *Engine) reconcileJanitorial(st *task.State, in Inputs, line JanitorialLine, existing task.Task, exists bool, now time.Time, res *Result) {
	included := line.Included()

	if exists {
		if existing.Started() {
			res.Kept = append(res.Kept, existing.ID)
			return
		}
		if !included {
			e.remove(st, existing, res)
			return
		}
		stale := existing.Description != line.Name ||
			existing.Notes != line.Instructions
		if !stale {
			res.Kept = append(res.Kept, existing.ID)
			return
		}
		st.Delete(existing.ID)
		res.Refreshed = append(res.Refreshed, existing.ID)
	}

	if !included {
		return
	}

	t := task.Task{
		ID:            ids.GenerateWithTimestamp(in.DayID+":"+line.ID, now, ids.DefaultLength),
		DayID:         in.DayID,
		JanitorialID:  line.ID,
		ItemName:      line.Name,
		Description:   line.Name,
		Notes:         line.Instructions,
		AutoGenerated: line.Schedule == ScheduleDaily,
		CreatedAt:     now,
	}
	st.Put(t)
	res.Created = append(res.Created, t.ID)
}

func (e *Engine) publishSummary(dayID string, res Result) {
	if e.notifier == nil {
		return
	}
	ev := notify.NewEvent(notify.EventTasksGenerated, dayID, "", "", e.now())
	ev.Data = map[string]string{
		"created":   strconv.Itoa(len(res.Created)),
		"deleted":   strconv.Itoa(len(res.Deleted)),
		"refreshed": strconv.Itoa(len(res.Refreshed)),
		"kept":      strconv.Itoa(len(res.Kept)),
		"errors":    strconv.Itoa(len(res.LineErrors)),
	}
	_ = e.notifier.Publish(ev)
}
