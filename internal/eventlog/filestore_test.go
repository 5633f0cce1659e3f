package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

func tempFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "sub", "history.log"))
}

func TestFileStoreLogAndEntries(t *testing.T) {
	s := tempFileStore(t)
	if err := s.Log(Entry{Outcome: OutcomeOK, Source: "a.png", Output: "a.icns", Compiler: "native", Filter: "lanczos", Duration: time.Second}); err != nil {
		t.Fatal(err)
	}
	if err := s.Log(Entry{Outcome: OutcomeFailed, Source: "b.png", Output: "b.icns", Error: "boom"}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != "a.png" || entries[0].Compiler != "native" || entries[0].Duration != time.Second {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Outcome != OutcomeFailed || entries[1].Error != "boom" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if entries[0].Time.IsZero() {
		t.Error("Log should stamp entries with the current time")
	}
}

func TestFileStoreEntriesMissingFile(t *testing.T) {
	s := tempFileStore(t)
	entries, err := s.Entries(0)
	if err != nil {
		t.Fatalf("Entries on missing file: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}

func TestFileStoreEntriesDaysFilter(t *testing.T) {
	s := tempFileStore(t)
	old := time.Now().AddDate(0, 0, -10)
	if err := s.Log(Entry{Time: old, Outcome: OutcomeOK, Source: "old.png"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Log(Entry{Outcome: OutcomeOK, Source: "new.png"}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Entries(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Source != "new.png" {
		t.Errorf("Entries(1) = %+v, want only new.png", entries)
	}
}

func TestFileStoreClean(t *testing.T) {
	s := tempFileStore(t)
	old := time.Now().AddDate(0, 0, -30)
	for i := 0; i < 3; i++ {
		if err := s.Log(Entry{Time: old, Outcome: OutcomeOK}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Log(Entry{Outcome: OutcomeFailed, Source: "keep.png"}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Clean(7)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	entries, _ := s.Entries(0)
	if len(entries) != 1 || entries[0].Source != "keep.png" {
		t.Errorf("entries after Clean = %+v", entries)
	}
}

func TestFileStoreCleanNothingToRemove(t *testing.T) {
	s := tempFileStore(t)
	if n, err := s.Clean(7); err != nil || n != 0 {
		t.Errorf("Clean on missing file = (%d, %v), want (0, nil)", n, err)
	}
	if err := s.Log(Entry{Outcome: OutcomeOK}); err != nil {
		t.Fatal(err)
	}
	if n, err := s.Clean(7); err != nil || n != 0 {
		t.Errorf("Clean = (%d, %v), want (0, nil)", n, err)
	}
}

func TestFileStoreClear(t *testing.T) {
	s := tempFileStore(t)
	if err := s.Log(Entry{Outcome: OutcomeOK}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Clear should remove the log file")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
}

func TestFileStoreWritesOneLinePerRun(t *testing.T) {
	s := tempFileStore(t)
	if err := s.Log(Entry{Outcome: OutcomeFailed, Error: "multi\nline\nerror"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 1 {
		t.Errorf("log has %d lines, want 1:\n%s", n, data)
	}
}
