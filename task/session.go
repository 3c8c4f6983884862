package task

import "time"

// Session is one contiguous stretch of work on a task. The first start of a
// task opens its first session; reopen opens another. Pause time inside a
// session is recorded on the session so it can be excluded from elapsed time.
type Session struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// PauseDurationSeconds is pause time accrued within this session.
	PauseDurationSeconds int `json:"pause_duration_seconds"`

	CreatedAt time.Time `json:"created_at"`
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	return s.EndedAt != nil
}

// Record bundles a task with its sessions, ordered by start time.
type Record struct {
	Task     Task      `json:"task"`
	Sessions []Session `json:"sessions,omitempty"`
}

// ActiveSession returns the unclosed session, or nil when every session has
// ended. A task has at most one active session.
func (r *Record) ActiveSession() *Session {
	for i := range r.Sessions {
		if !r.Sessions[i].Closed() {
			return &r.Sessions[i]
		}
	}
	return nil
}

// LastSession returns the most recently started session, or nil when the
// task has never been started.
func (r *Record) LastSession() *Session {
	if len(r.Sessions) == 0 {
		return nil
	}
	return &r.Sessions[len(r.Sessions)-1]
}
