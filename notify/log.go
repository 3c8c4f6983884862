package notify

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EventLog appends events to per-day JSONL files under a directory.
type EventLog struct {
	dir string

	mu      sync.Mutex
	day     string
	file    *os.File
	encoder *json.Encoder
}

// OpenEventLog creates an event log rooted at dir.
func OpenEventLog(dir string) (*EventLog, error) {
	if dir == "" {
		return nil, fmt.Errorf("events dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create events dir: %w", err)
	}
	return &EventLog{dir: dir}, nil
}

// Publish appends the event to the log file for its day.
func (l *EventLog) Publish(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureFile(event.DayID); err != nil {
		return err
	}
	return l.encoder.Encode(event)
}

// Close flushes and closes the current log file.
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.encoder = nil
	l.day = ""
	return err
}

// Path returns the log file path for a day.
func (l *EventLog) Path(dayID string) string {
	return filepath.Join(l.dir, "events-"+dayID+".jsonl")
}

func (l *EventLog) ensureFile(dayID string) error {
	if dayID == "" {
		return fmt.Errorf("event is missing its day id")
	}
	if l.file != nil && l.day == dayID {
		return nil
	}
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			return fmt.Errorf("close event log: %w", err)
		}
		l.file = nil
		l.encoder = nil
	}

	file, err := os.OpenFile(l.Path(dayID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	l.day = dayID
	l.file = file
	l.encoder = json.NewEncoder(file)
	return nil
}

// ReadEvents reads events from a JSONL reader.
func ReadEvents(reader io.Reader) ([]Event, error) {
	events := make([]Event, 0)
	if reader == nil {
		return events, nil
	}
	buffer := bufio.NewReader(reader)
	for {
		line, err := buffer.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line != "" {
			var event Event
			if unmarshalErr := json.Unmarshal([]byte(line), &event); unmarshalErr != nil {
				return nil, fmt.Errorf("decode event: %w", unmarshalErr)
			}
			events = append(events, event)
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return events, nil
}
