package task

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

const (
	// TasksFile is the name of the JSONL file containing tasks.
	TasksFile = "tasks.jsonl"

	// SessionsFile is the name of the JSONL file containing work sessions.
	SessionsFile = "sessions.jsonl"

	maxJSONLineBytes = 1024 * 1024
)

// Store is the persistence boundary the lifecycle controller and the
// reconciliation engine operate against.
type Store interface {
	// Get returns the task with the given ID and its sessions.
	Get(id string) (Record, error)

	// ListByDay returns every task for a day, ordered by creation time.
	ListByDay(dayID string) ([]Record, error)

	// Create persists a new task.
	Create(t Task) error

	// Delete removes a task and its sessions.
	Delete(id string) error

	// Apply runs fn against a mutable view of the full data set under an
	// exclusive lock and persists the result atomically. If fn returns an
	// error, nothing is written.
	Apply(fn func(*State) error) error

	// MostRecentCompletedForBatch returns the most recently finished task
	// producing into the given batch, or nil when none exists.
	MostRecentCompletedForBatch(batchID string) (*Record, error)
}

// State is the mutable view of the data set passed to Apply callbacks.
type State struct {
	tasks    []Task
	sessions []Session
}

// Get returns a pointer into the state's task slice, or nil when the ID is
// unknown. Mutations through the pointer are persisted when Apply commits.
func (st *State) Get(id string) *Task {
	for i := range st.tasks {
		if st.tasks[i].ID == id {
			return &st.tasks[i]
		}
	}
	return nil
}

// Tasks returns every task in the state.
func (st *State) Tasks() []Task {
	return st.tasks
}

// Put adds a task, or replaces the stored task with the same ID.
func (st *State) Put(t Task) {
	for i := range st.tasks {
		if st.tasks[i].ID == t.ID {
			st.tasks[i] = t
			return
		}
	}
	st.tasks = append(st.tasks, t)
}

// Delete removes a task and its sessions. It reports whether the task
// existed.
func (st *State) Delete(id string) bool {
	found := false
	tasks := st.tasks[:0]
	for _, t := range st.tasks {
		if t.ID == id {
			found = true
			continue
		}
		tasks = append(tasks, t)
	}
	st.tasks = tasks

	if found {
		sessions := st.sessions[:0]
		for _, s := range st.sessions {
			if s.TaskID != id {
				sessions = append(sessions, s)
			}
		}
		st.sessions = sessions
	}
	return found
}

// SessionsFor returns pointers to the task's sessions, ordered by start
// time.
func (st *State) SessionsFor(taskID string) []*Session {
	var out []*Session
	for i := range st.sessions {
		if st.sessions[i].TaskID == taskID {
			out = append(out, &st.sessions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// ActiveSessionFor returns the task's unclosed session, or nil.
func (st *State) ActiveSessionFor(taskID string) *Session {
	for _, s := range st.SessionsFor(taskID) {
		if !s.Closed() {
			return s
		}
	}
	return nil
}

// AddSession appends a new session.
func (st *State) AddSession(s Session) {
	st.sessions = append(st.sessions, s)
}

func (st *State) record(t Task) Record {
	rec := Record{Task: t}
	for _, s := range st.SessionsFor(t.ID) {
		rec.Sessions = append(rec.Sessions, *s)
	}
	return rec
}

// DirStore is a Store backed by JSONL files in a directory, with flock-based
// exclusion so concurrent processes serialize their writes.
type DirStore struct {
	dir string
}

var _ Store = (*DirStore)(nil)

// OpenDir opens (creating if necessary) a DirStore rooted at dir.
func OpenDir(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (ds *DirStore) tasksPath() string    { return filepath.Join(ds.dir, TasksFile) }
func (ds *DirStore) sessionsPath() string { return filepath.Join(ds.dir, SessionsFile) }

// Get implements Store.
func (ds *DirStore) Get(id string) (Record, error) {
	var rec Record
	err := ds.read(func(st *State) error {
		t := st.Get(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		rec = st.record(*t)
		return nil
	})
	return rec, err
}

// ListByDay implements Store.
func (ds *DirStore) ListByDay(dayID string) ([]Record, error) {
	var recs []Record
	err := ds.read(func(st *State) error {
		for _, t := range st.tasks {
			if t.DayID == dayID {
				recs = append(recs, st.record(t))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Task.CreatedAt.Before(recs[j].Task.CreatedAt)
	})
	return recs, nil
}

// All returns every task in the store with its sessions, ordered by
// creation time.
func (ds *DirStore) All() ([]Record, error) {
	var recs []Record
	err := ds.read(func(st *State) error {
		for _, t := range st.tasks {
			recs = append(recs, st.record(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Task.CreatedAt.Before(recs[j].Task.CreatedAt)
	})
	return recs, nil
}

// Create implements Store.
func (ds *DirStore) Create(t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return ds.Apply(func(st *State) error {
		if st.Get(t.ID) != nil {
			return fmt.Errorf("task %s already exists", t.ID)
		}
		st.Put(t)
		return nil
	})
}

// Delete implements Store.
func (ds *DirStore) Delete(id string) error {
	return ds.Apply(func(st *State) error {
		if !st.Delete(id) {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return nil
	})
}

// MostRecentCompletedForBatch implements Store.
func (ds *DirStore) MostRecentCompletedForBatch(batchID string) (*Record, error) {
	if batchID == "" {
		return nil, nil
	}
	var best *Record
	err := ds.read(func(st *State) error {
		for _, t := range st.tasks {
			if t.FinishedAt == nil || t.BatchRef() != batchID {
				continue
			}
			if best == nil || t.FinishedAt.After(*best.Task.FinishedAt) {
				rec := st.record(t)
				best = &rec
			}
		}
		return nil
	})
	return best, err
}

// Apply implements Store. The lock is held on the tasks file for the whole
// read-modify-write, so callbacks see a consistent snapshot and writes never
// interleave.
func (ds *DirStore) Apply(fn func(*State) error) error {
	return withFileLock(ds.tasksPath(), func() error {
		st, err := ds.load()
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		for i := range st.tasks {
			if err := st.tasks[i].Validate(); err != nil {
				return fmt.Errorf("task %s: %w", st.tasks[i].ID, err)
			}
		}
		if err := writeJSONL(ds.tasksPath(), st.tasks); err != nil {
			return fmt.Errorf("write tasks: %w", err)
		}
		if err := writeJSONL(ds.sessionsPath(), st.sessions); err != nil {
			return fmt.Errorf("write sessions: %w", err)
		}
		return nil
	})
}

func (ds *DirStore) read(fn func(*State) error) error {
	return withFileLock(ds.tasksPath(), func() error {
		st, err := ds.load()
		if err != nil {
			return err
		}
		return fn(st)
	})
}

func (ds *DirStore) load() (*State, error) {
	tasks, err := readJSONL[Task](ds.tasksPath())
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	sessions, err := readJSONL[Session](ds.sessionsPath())
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return &State{tasks: tasks, sessions: sessions}, nil
}

// withFileLock executes fn while holding an exclusive lock on the file at
// path. Creates the file if it doesn't exist.
func withFileLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open file for locking: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

// readJSONL reads all JSON objects from a JSONL file into a slice.
func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return readJSONLFromReader[T](f)
}

func readJSONLFromReader[T any](reader io.Reader) ([]T, error) {
	var items []T
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

// writeJSONL writes a slice of items to a JSONL file, overwriting any
// existing content.
func writeJSONL[T any](path string, items []T) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	encoder := json.NewEncoder(f)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
