package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/prepline/prepline/internal/config"
	"github.com/prepline/prepline/notify"
	"github.com/prepline/prepline/reconcile"
	"github.com/prepline/prepline/task"
)

// appEnv bundles the store and notifier a command runs against.
type appEnv struct {
	cfg      *config.Config
	store    *task.DirStore
	notifier notify.Notifier

	eventLog *notify.EventLog
}

func openEnv() (*appEnv, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := task.OpenDir(dataDir)
	if err != nil {
		return nil, err
	}

	eventsDir, err := cfg.EventsDir()
	if err != nil {
		return nil, err
	}
	eventLog, err := notify.OpenEventLog(eventsDir)
	if err != nil {
		return nil, err
	}

	sinks := []notify.Notifier{eventLog}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL))
	}

	return &appEnv{
		cfg:      cfg,
		store:    store,
		notifier: notify.NewBroadcaster(sinks...),
		eventLog: eventLog,
	}, nil
}

func (e *appEnv) Close() {
	if e.eventLog != nil {
		e.eventLog.Close()
	}
}

func (e *appEnv) controller(batches task.BatchSource) *task.Controller {
	return task.NewController(e.store, task.ControllerOptions{
		Batches:  batches,
		Notifier: e.notifier,
	})
}

// dayBatches returns the configured day file's batch definitions, or nil
// when no day file is available. Lifecycle operations that can use batch
// data (scale checks, yield-derived made amounts) degrade gracefully
// without it.
func (e *appEnv) dayBatches() task.BatchSource {
	df, err := e.loadDay("")
	if err != nil {
		return nil
	}
	return df.BatchIndex()
}

// dayRates returns the day's wage table, filling in the configured default
// hourly rate for workers listed without a wage.
func (e *appEnv) dayRates(df *reconcile.DayFile) task.Rates {
	rates := df.Rates()
	def := e.cfg.Labor.DefaultHourlyRate
	if def <= 0 {
		return rates
	}
	for id, wage := range rates {
		if wage == 0 {
			rates[id] = def
		}
	}
	return rates
}

// dayFilePath returns the day file path from the flag, falling back to the
// configured default.
func (e *appEnv) dayFilePath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if e.cfg.Day.File != "" {
		return e.cfg.Day.File, nil
	}
	return "", fmt.Errorf("no day file: pass --file or set day.file in prepline.toml")
}

// loadDay loads the day file named by flag (or the configured default).
func (e *appEnv) loadDay(flag string) (*reconcile.DayFile, error) {
	path, err := e.dayFilePath(flag)
	if err != nil {
		return nil, err
	}
	return reconcile.LoadDayFile(path)
}

// resolveTaskID resolves an exact ID or a unique ID prefix against the
// store.
func resolveTaskID(store *task.DirStore, arg string) (string, error) {
	recs, err := store.All()
	if err != nil {
		return "", err
	}

	arg = strings.ToLower(arg)
	var matches []string
	for _, rec := range recs {
		id := strings.ToLower(rec.Task.ID)
		if id == arg {
			return rec.Task.ID, nil
		}
		if strings.HasPrefix(id, arg) {
			matches = append(matches, rec.Task.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", task.ErrTaskNotFound, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous task ID %q matches %s", arg, strings.Join(matches, ", "))
	}
}
