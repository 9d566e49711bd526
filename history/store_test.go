package history

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t)

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if err := s.Add(text, 1.5, "groq"); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}

	entries, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Most recent first.
	if entries[0].Text != "third" || entries[2].Text != "first" {
		t.Errorf("wrong order: %q ... %q", entries[0].Text, entries[2].Text)
	}
	if entries[0].Provider != "groq" {
		t.Errorf("provider = %q", entries[0].Provider)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Add("entry", 1, "fake"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	entries, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestTotals(t *testing.T) {
	s := openTestStore(t)

	count, audio, err := s.Totals()
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if count != 0 || audio != 0 {
		t.Errorf("empty store totals = %d, %f", count, audio)
	}

	s.Add("a", 2.0, "fake")
	s.Add("b", 3.5, "fake")

	count, audio, err = s.Totals()
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if audio < 5.49 || audio > 5.51 {
		t.Errorf("audio seconds = %f, want 5.5", audio)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Add("persisted", 1, "fake"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	entries, err := s2.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "persisted" {
		t.Fatalf("entries = %+v", entries)
	}
}
