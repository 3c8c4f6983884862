package task

// Status is a task's derived lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// ValidStatuses lists every status in lifecycle order.
func ValidStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted:
		return true
	default:
		return false
	}
}

// Open reports whether the task can still accrue work time.
func (s Status) Open() bool {
	return s != StatusCompleted
}
