package task

import (
	"errors"
	"testing"
	"time"
)

func TestDirStoreRoundTrip(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	created := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	tk := Task{
		ID:          "rt000001",
		DayID:       "2026-08-28",
		Description: "Restock Lemons",
		CreatedAt:   created,
	}
	if err := store.Create(tk); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, err := store.Get(tk.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Task.Description != tk.Description {
		t.Fatalf("expected %q, got %q", tk.Description, rec.Task.Description)
	}
	if !rec.Task.CreatedAt.Equal(created) {
		t.Fatalf("expected created at %s, got %s", created, rec.Task.CreatedAt)
	}
}

func TestDirStoreCreateRejectsDuplicates(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	tk := Task{ID: "dup00001", DayID: "2026-08-28", Description: "Restock Basil", CreatedAt: time.Now()}
	if err := store.Create(tk); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(tk); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}
}

func TestDirStoreCreateValidates(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	err = store.Create(Task{ID: "bad00001", DayID: "2026-08-28", Description: "Bad links",
		InventoryItemID: "i1", BatchID: "b1", CreatedAt: time.Now()})
	if !errors.Is(err, ErrConflictingLinks) {
		t.Fatalf("expected ErrConflictingLinks, got %v", err)
	}
}

func TestDirStoreDeleteRemovesSessions(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	clock := newTestClock()
	ctrl := NewController(store, ControllerOptions{Now: clock.Now})
	id := seedTask(t, store, clock, "w1")
	if _, err := ctrl.Start(id, "w1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(id); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	err = store.Apply(func(st *State) error {
		if sessions := st.SessionsFor(id); len(sessions) != 0 {
			t.Fatalf("expected sessions removed, found %d", len(sessions))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
}

func TestDirStoreListByDayOrdersByCreation(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	for i, id := range []string{"ld000003", "ld000001", "ld000002"} {
		tk := Task{
			ID:          id,
			DayID:       "2026-08-28",
			Description: "Task " + id,
			CreatedAt:   base.Add(time.Duration(2-i) * time.Minute),
		}
		if err := store.Create(tk); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	other := Task{ID: "ld000009", DayID: "2026-08-29", Description: "Other day", CreatedAt: base}
	if err := store.Create(other); err != nil {
		t.Fatalf("create: %v", err)
	}

	recs, err := store.ListByDay("2026-08-28")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(recs))
	}
	want := []string{"ld000002", "ld000001", "ld000003"}
	for i, rec := range recs {
		if rec.Task.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], rec.Task.ID)
		}
	}
}

func TestDirStoreApplyRollsBackOnError(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	boom := errors.New("boom")
	err = store.Apply(func(st *State) error {
		st.Put(Task{ID: "rb000001", DayID: "2026-08-28", Description: "Doomed", CreatedAt: time.Now()})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := store.Get("rb000001"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected task not persisted, got %v", err)
	}
}

func TestMostRecentCompletedForBatch(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	put := func(id, batchID, itemBatchID string, finished *time.Time) {
		t.Helper()
		tk := Task{
			ID:          id,
			DayID:       "2026-08-28",
			Description: "Make " + id,
			BatchID:     batchID,
			CreatedAt:   base,
		}
		if itemBatchID != "" {
			tk.BatchID = ""
			tk.InventoryItemID = "item-" + id
			tk.ItemBatchID = itemBatchID
		}
		if finished != nil {
			started := finished.Add(-time.Hour)
			tk.StartedAt = &started
			tk.FinishedAt = finished
		}
		if err := store.Create(tk); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	early := base.Add(1 * time.Hour)
	late := base.Add(3 * time.Hour)

	put("mr000001", "b1", "", &early)
	put("mr000002", "", "b1", &late) // linked through its inventory item
	put("mr000003", "b1", "", nil)   // never finished
	put("mr000004", "b2", "", &late)

	rec, err := store.MostRecentCompletedForBatch("b1")
	if err != nil {
		t.Fatalf("most recent: %v", err)
	}
	if rec == nil || rec.Task.ID != "mr000002" {
		t.Fatalf("expected mr000002, got %+v", rec)
	}

	rec, err = store.MostRecentCompletedForBatch("b9")
	if err != nil {
		t.Fatalf("most recent: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for unknown batch, got %+v", rec)
	}
}
