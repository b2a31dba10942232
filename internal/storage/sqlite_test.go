package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pet/internal/pet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func change(id string, action pet.Action, hearts int, muted bool) pet.Change {
	return pet.Change{
		ID:     id,
		Action: action,
		State: pet.State{
			Hearts:      hearts,
			IsMuted:     muted,
			LastUpdated: time.Date(2025, 3, 4, 5, 6, 7, 123000000, time.UTC),
		},
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file and its parent directory were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveChange(change("a", pet.ActionAddHeart, 4, false)); err != nil {
		t.Fatalf("SaveChange() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	entries, err := store.RecentChanges(10)
	if err != nil {
		t.Fatalf("RecentChanges() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	saved := change("c-1", pet.ActionUpdate, 6, true)
	if _, err := store.SaveChange(saved); err != nil {
		t.Fatalf("SaveChange() failed: %v", err)
	}

	entry, err := store.ChangeByID("c-1")
	if err != nil {
		t.Fatalf("ChangeByID() failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected entry, got nil")
	}

	if entry.Action != pet.ActionUpdate {
		t.Errorf("Action = %q, want %q", entry.Action, pet.ActionUpdate)
	}
	if entry.Hearts != 6 {
		t.Errorf("Hearts = %d, want 6", entry.Hearts)
	}
	if !entry.IsMuted {
		t.Error("IsMuted = false, want true")
	}
	if !entry.LastUpdated.Equal(saved.State.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", entry.LastUpdated, saved.State.LastUpdated)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}
}

func TestStoreChangeByIDMissing(t *testing.T) {
	store := openTestStore(t)

	entry, err := store.ChangeByID("nope")
	if err != nil {
		t.Fatalf("ChangeByID() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil for missing change, got %+v", entry)
	}
}

func TestStoreDuplicateChangeID(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveChange(change("dup", pet.ActionReset, 3, false)); err != nil {
		t.Fatalf("SaveChange() failed: %v", err)
	}
	if _, err := store.SaveChange(change("dup", pet.ActionReset, 3, false)); err == nil {
		t.Error("Expected error for duplicate change ID")
	}
}

func TestStoreRecentChangesOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.RecordChange(change(fmt.Sprintf("c-%d", i), pet.ActionAddHeart, i, false)); err != nil {
			t.Fatalf("RecordChange() failed: %v", err)
		}
	}

	entries, err := store.RecentChanges(3)
	if err != nil {
		t.Fatalf("RecentChanges() failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries with limit, got %d", len(entries))
	}

	// Newest first: c-4, c-3, c-2
	if entries[0].ChangeID != "c-4" || entries[1].ChangeID != "c-3" || entries[2].ChangeID != "c-2" {
		t.Errorf("Entries not in expected order: %v", entries)
	}
}

func TestStoreRecentChangesDefaultLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 25; i++ {
		store.RecordChange(change(fmt.Sprintf("c-%d", i), pet.ActionToggleMute, 3, i%2 == 0))
	}

	entries, err := store.RecentChanges(0)
	if err != nil {
		t.Fatalf("RecentChanges() failed: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("Expected default limit of 20, got %d", len(entries))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	store.RecordChange(change("a", pet.ActionAddHeart, 4, false))
	store.RecordChange(change("b", pet.ActionAddHeart, 5, false))
	store.RecordChange(change("c", pet.ActionReset, 3, false))

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if got := stats[pet.ActionAddHeart]; got == nil || got.Count != 2 {
		t.Errorf("add_heart stats = %+v, want count 2", got)
	}
	if got := stats[pet.ActionReset]; got == nil || got.Count != 1 {
		t.Errorf("reset stats = %+v, want count 1", got)
	}
	if _, ok := stats[pet.ActionToggleMute]; ok {
		t.Error("Expected no stats for toggle_mute")
	}
}

func TestStoreClearChanges(t *testing.T) {
	store := openTestStore(t)

	store.RecordChange(change("a", pet.ActionAddHeart, 4, false))

	if err := store.ClearChanges(); err != nil {
		t.Fatalf("ClearChanges() failed: %v", err)
	}

	entries, err := store.RecentChanges(10)
	if err != nil {
		t.Fatalf("RecentChanges() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty journal after clear, got %d entries", len(entries))
	}
}

func TestStoreRecordsStoreChanges(t *testing.T) {
	store := openTestStore(t)
	ps := pet.NewStore()
	sub := ps.Subscribe(4)
	defer sub.Close()

	if _, err := ps.AddHeart(); err != nil {
		t.Fatalf("AddHeart() failed: %v", err)
	}

	c := <-sub.Changes()
	if err := store.RecordChange(c); err != nil {
		t.Fatalf("RecordChange() failed: %v", err)
	}

	entry, err := store.ChangeByID(c.ID)
	if err != nil || entry == nil {
		t.Fatalf("ChangeByID() = %v, %v", entry, err)
	}
	if entry.Hearts != pet.DefaultHearts+1 {
		t.Errorf("Hearts = %d, want %d", entry.Hearts, pet.DefaultHearts+1)
	}
}
