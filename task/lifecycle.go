package task

import (
	"fmt"
	"time"

	"github.com/prepline/prepline/batch"
	"github.com/prepline/prepline/internal/ids"
	"github.com/prepline/prepline/notify"
)

// Controller implements the task lifecycle: starting, pausing, resuming,
// finishing, reopening, and post-hoc corrections. Every operation is a
// single store transaction; notification events are published only after
// that transaction commits, and a publish failure never fails the
// operation.
type Controller struct {
	store    Store
	batches  BatchSource
	notifier notify.Notifier
	now      func() time.Time
}

// ControllerOptions configures a Controller. Zero-value fields get safe
// defaults: no batch source, no notifier, wall-clock time.
type ControllerOptions struct {
	// Batches resolves batch definitions for scale lookups. May be nil for
	// stores that hold no batch-linked tasks.
	Batches BatchSource

	// Notifier receives lifecycle events. May be nil.
	Notifier notify.Notifier

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewController returns a Controller over the given store.
func NewController(store Store, opts ControllerOptions) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:    store,
		batches:  opts.Batches,
		notifier: opts.Notifier,
		now:      now,
	}
}

// Start begins work on a not-started task: records the start time and opens
// the task's first session. The task must have at least one assigned
// worker.
func (c *Controller) Start(id, actorID string) (Record, error) {
	return c.startWithFactor(id, actorID, "", nil)
}

// StartWithScale is Start with a production scale chosen for a batch-linked
// task. Unknown scale keys fall back to a factor of 1.0 so a stale client
// can never block the kitchen.
func (c *Controller) StartWithScale(id, scaleKey, actorID string) (Record, error) {
	factor := batch.ScaleFactor(scaleKey)
	return c.startWithFactor(id, actorID, scaleKey, &factor)
}

func (c *Controller) startWithFactor(id, actorID, scaleKey string, factor *float64) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if status := t.Status(); status != StatusNotStarted {
			return fmt.Errorf("%w: cannot start a %s task", ErrInvalidStateTransition, status)
		}
		if len(t.AssignedWorkerIDs) == 0 {
			return ErrUnassigned
		}

		now := c.now()
		t.StartedAt = &now
		if scaleKey != "" && c.scalable(t) {
			t.ScaleKey = scaleKey
			t.ScaleFactor = factor
		}
		st.AddSession(Session{
			ID:        ids.GenerateWithTimestamp(t.ID, now, ids.DefaultLength),
			TaskID:    t.ID,
			StartedAt: now,
			CreatedAt: now,
		})
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskStarted, rec, actorID)
	return rec, nil
}

// Pause suspends an in-progress task. Pause time accrues until Resume or
// Finish.
func (c *Controller) Pause(id, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if status := t.Status(); status != StatusInProgress {
			return fmt.Errorf("%w: cannot pause a %s task", ErrInvalidStateTransition, status)
		}
		now := c.now()
		t.PausedAt = &now
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskPaused, rec, actorID)
	return rec, nil
}

// Resume continues a paused task, folding the pause interval into the
// task's and the active session's pause totals.
func (c *Controller) Resume(id, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if status := t.Status(); status != StatusPaused {
			return fmt.Errorf("%w: cannot resume a %s task", ErrInvalidStateTransition, status)
		}
		now := c.now()
		paused := int(now.Sub(*t.PausedAt).Seconds())
		if paused < 0 {
			paused = 0
		}
		t.TotalPauseSeconds += paused
		if s := st.ActiveSessionFor(t.ID); s != nil {
			s.PauseDurationSeconds += paused
		}
		t.PausedAt = nil
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskResumed, rec, actorID)
	return rec, nil
}

// FinishOptions carries the optional production output recorded at finish.
type FinishOptions struct {
	MadeAmount *float64
	MadeUnit   string
}

// Finish completes an in-progress or paused task: closes the active
// session, folds any outstanding pause, and records the made amount when
// one is supplied. Tasks marked MadeAmountRequired refuse to finish without
// one.
func (c *Controller) Finish(id, actorID string, opts FinishOptions) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		status := t.Status()
		if status != StatusInProgress && status != StatusPaused {
			return fmt.Errorf("%w: cannot finish a %s task", ErrInvalidStateTransition, status)
		}
		if t.MadeAmountRequired && opts.MadeAmount == nil {
			return fmt.Errorf("%w: %s", ErrMadeAmountRequired, t.Description)
		}

		now := c.now()
		outstanding := 0
		if t.PausedAt != nil {
			outstanding = int(now.Sub(*t.PausedAt).Seconds())
			if outstanding < 0 {
				outstanding = 0
			}
			t.TotalPauseSeconds += outstanding
		}
		if s := st.ActiveSessionFor(t.ID); s != nil {
			s.PauseDurationSeconds += outstanding
			s.EndedAt = &now
		}
		t.FinishedAt = &now
		if opts.MadeAmount != nil {
			t.MadeAmount = opts.MadeAmount
			t.MadeUnit = opts.MadeUnit
		} else if amount, unit, ok := c.autoMadeAmount(t); ok {
			t.MadeAmount = &amount
			if t.MadeUnit == "" {
				t.MadeUnit = unit
			}
		}
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskCompleted, rec, actorID)
	return rec, nil
}

// Reopen returns a completed task to work: clears the finish and pause
// marks and opens a fresh session, so prior elapsed time is preserved and
// new time accrues on top of it.
func (c *Controller) Reopen(id, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if status := t.Status(); status != StatusCompleted {
			return fmt.Errorf("%w: cannot reopen a %s task", ErrInvalidStateTransition, status)
		}
		now := c.now()
		t.FinishedAt = nil
		t.PausedAt = nil
		st.AddSession(Session{
			ID:        ids.GenerateWithTimestamp(t.ID, now, ids.DefaultLength),
			TaskID:    t.ID,
			StartedAt: now,
			CreatedAt: now,
		})
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskReopened, rec, actorID)
	return rec, nil
}

// EditElapsedTime is a manager override that rewrites a completed task's
// recorded time. A task with a single session simply gets its session end
// moved to finishedAt. With multiple sessions the final session's duration
// becomes totalMinutes minus the time the earlier sessions already account
// for; a total equal to that prior time leaves the final session at zero
// duration.
func (c *Controller) EditElapsedTime(id string, totalMinutes float64, finishedAt time.Time, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if t.Status() != StatusCompleted {
			return ErrInvalidTimeEdit
		}

		sessions := st.SessionsFor(t.ID)
		if len(sessions) == 0 {
			return ErrInvalidTimeEdit
		}

		if len(sessions) == 1 {
			s := sessions[0]
			if !finishedAt.After(s.StartedAt) {
				return fmt.Errorf("%w: finish time must be after the session start", ErrInvalidTimeEdit)
			}
			s.EndedAt = &finishedAt
			t.FinishedAt = &finishedAt
			rec = st.record(*t)
			return nil
		}

		if totalMinutes < 0 {
			return fmt.Errorf("%w: negative duration", ErrInvalidTimeEdit)
		}
		priorSeconds := 0.0
		for _, s := range sessions[:len(sessions)-1] {
			if s.EndedAt == nil {
				return ErrInvalidTimeEdit
			}
			secs := s.EndedAt.Sub(s.StartedAt).Seconds() - float64(s.PauseDurationSeconds)
			if secs > 0 {
				priorSeconds += secs
			}
		}
		priorMinutes := priorSeconds / 60
		if totalMinutes < priorMinutes {
			return fmt.Errorf("%w: earlier sessions already account for %.0f minutes",
				ErrInsufficientDuration, priorMinutes)
		}

		last := sessions[len(sessions)-1]
		ended := last.StartedAt.
			Add(time.Duration((totalMinutes - priorMinutes) * float64(time.Minute))).
			Add(time.Duration(last.PauseDurationSeconds) * time.Second)
		last.EndedAt = &ended
		t.FinishedAt = &ended
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Assign sets the ordered worker list on an open task. The first worker is
// the primary assignee.
func (c *Controller) Assign(id string, workerIDs []string, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if t.Status() == StatusCompleted {
			return fmt.Errorf("%w: use edit-assignees on a completed task", ErrInvalidStateTransition)
		}
		t.AssignedWorkerIDs = append([]string(nil), workerIDs...)
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskAssigned, rec, actorID)
	return rec, nil
}

// EditAssignees corrects the worker list on a completed task so labor cost
// is attributed to the people who actually did the work. A completed task
// must keep at least one worker.
func (c *Controller) EditAssignees(id string, workerIDs []string, actorID string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if t.Status() != StatusCompleted {
			return fmt.Errorf("%w: edit-assignees applies to completed tasks", ErrInvalidStateTransition)
		}
		if len(workerIDs) == 0 {
			return ErrNoWorkers
		}
		t.AssignedWorkerIDs = append([]string(nil), workerIDs...)
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	c.publish(notify.EventTaskAssigned, rec, actorID)
	return rec, nil
}

// SetNotes replaces the task's notes.
func (c *Controller) SetNotes(id, notes string) (Record, error) {
	var rec Record
	err := c.store.Apply(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		t.Notes = notes
		rec = st.record(*t)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// autoMadeAmount derives the production output of a finished batch task
// from the batch's yield and the chosen scale. It applies only to tasks
// started with an explicit scale; variable-yield batches have no
// predictable output, so those tasks record the amount by hand.
func (c *Controller) autoMadeAmount(t *Task) (float64, string, bool) {
	if c.batches == nil || t.ScaleFactor == nil {
		return 0, "", false
	}
	b, ok := c.batches.Batch(t.BatchRef())
	if !ok || b.VariableYield || b.YieldAmount <= 0 {
		return 0, "", false
	}
	return b.ScaledYield(*t.ScaleFactor), b.YieldUnit, true
}

// scalable reports whether a scale choice applies to the task. Without a
// batch source, or for tasks with no known batch, any choice is honored.
func (c *Controller) scalable(t *Task) bool {
	if c.batches == nil {
		return true
	}
	b, ok := c.batches.Batch(t.BatchRef())
	if !ok {
		return true
	}
	return b.CanBeScaled
}

func (c *Controller) publish(name string, rec Record, actorID string) {
	if c.notifier == nil {
		return
	}
	ev := notify.NewEvent(name, rec.Task.DayID, rec.Task.ID, actorID, c.now())
	ev.Status = string(rec.Task.Status())
	ev.Description = rec.Task.Description
	_ = c.notifier.Publish(ev)
}
