package task

import (
	"errors"

	"github.com/prepline/prepline/internal/validation"
)

var (
	// ErrTaskNotFound is returned when a task ID does not resolve.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidStatus is returned when a status name is not recognized.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidStateTransition is returned when an operation is attempted
	// from a state it does not accept.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrUnassigned is returned when starting a task with no assigned
	// workers.
	ErrUnassigned = errors.New("task has no assigned workers")

	// ErrInvalidTimeEdit is returned when editing elapsed time on a task
	// that is not completed or has never been worked.
	ErrInvalidTimeEdit = errors.New("elapsed time can only be edited on a completed task")

	// ErrInsufficientDuration is returned when an elapsed-time edit would
	// leave the final session with nonpositive length.
	ErrInsufficientDuration = errors.New("edited duration is too short for recorded sessions")

	// ErrMadeAmountRequired is returned when finishing a task whose linked
	// item requires a recorded made amount and none was supplied.
	ErrMadeAmountRequired = errors.New("made amount is required to finish this task")

	// ErrNoWorkers is returned when editing assignees down to an empty
	// list on a task that requires at least one.
	ErrNoWorkers = errors.New("at least one worker is required")
)

// InvalidStatusError reports an unrecognized status name alongside the
// accepted ones.
func InvalidStatusError(status Status) error {
	return validation.FormatInvalidValueError(ErrInvalidStatus, status, ValidStatuses())
}
