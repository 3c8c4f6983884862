package reconcile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prepline/prepline/batch"
	"github.com/prepline/prepline/task"
)

// ErrNoDayFile is returned when the day file does not exist.
var ErrNoDayFile = errors.New("day file not found")

// Worker is a staff member listed in a day file.
type Worker struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	HourlyWage float64 `yaml:"hourly_wage"`
}

// DayFile is the on-disk input to a reconciliation run: the day's staff,
// batch definitions, inventory levels, and janitorial schedule.
type DayFile struct {
	Day        string           `yaml:"day"`
	Workers    []Worker         `yaml:"workers,omitempty"`
	Batches    []batch.Batch    `yaml:"batches,omitempty"`
	Items      []ItemLine       `yaml:"items,omitempty"`
	Janitorial []JanitorialLine `yaml:"janitorial,omitempty"`
}

// LoadDayFile reads and validates a day file.
func LoadDayFile(path string) (*DayFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoDayFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read day file: %w", err)
	}

	var df DayFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse day file %s: %w", path, err)
	}
	if df.Day == "" {
		return nil, fmt.Errorf("day file %s: %w", path, ErrMissingDay)
	}
	return &df, nil
}

// Inputs converts the file into a reconciliation run's inputs, filling each
// item line's recipe and batch category from the file's batch definitions.
func (df *DayFile) Inputs(force bool) Inputs {
	batches := df.BatchIndex()
	items := make([]ItemLine, len(df.Items))
	for i, line := range df.Items {
		if b, ok := batches.Batch(line.BatchID); ok {
			if line.RecipeName == "" {
				line.RecipeName = b.RecipeName
			}
			if line.BatchCategory == "" {
				line.BatchCategory = b.Category
			}
		}
		items[i] = line
	}
	return Inputs{
		DayID:           df.Day,
		Items:           items,
		Janitorial:      df.Janitorial,
		ForceRegenerate: force,
	}
}

// Rates returns the day's worker wage table.
func (df *DayFile) Rates() task.Rates {
	rates := make(task.Rates, len(df.Workers))
	for _, w := range df.Workers {
		rates[w.ID] = w.HourlyWage
	}
	return rates
}

// BatchIndex returns a lookup over the day's batch definitions.
func (df *DayFile) BatchIndex() BatchIndex {
	idx := make(BatchIndex, len(df.Batches))
	for i := range df.Batches {
		idx[df.Batches[i].ID] = &df.Batches[i]
	}
	return idx
}

// BatchIndex resolves batch IDs to definitions.
type BatchIndex map[string]*batch.Batch

var _ task.BatchSource = BatchIndex(nil)

// Batch implements task.BatchSource.
func (idx BatchIndex) Batch(id string) (*batch.Batch, bool) {
	b, ok := idx[id]
	return b, ok
}
