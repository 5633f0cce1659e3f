// Package eventlog records one entry per mkicon run, either in a flat
// log file or in a SQLite database.
package eventlog

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Mavwarf/mkicon/internal/paths"
)

// Outcome is the result of a run.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Entry is a single recorded run.
type Entry struct {
	Time     time.Time
	Outcome  Outcome
	Source   string
	Output   string
	Compiler string
	Filter   string
	Duration time.Duration
	Error    string
}

// Store abstracts run history storage.
type Store interface {
	Log(e Entry) error
	Entries(days int) ([]Entry, error) // 0 = all
	Clean(days int) (int, error)       // remove entries older than days, return removed count
	Clear() error
	Path() string
	Close() error
}

// Open returns the store for kind ("file" or "sqlite") in the data
// directory. An empty kind means history is disabled: Open returns nil.
func Open(kind string) (Store, error) {
	switch kind {
	case "":
		return nil, nil
	case "file":
		return NewFileStore(filepath.Join(paths.DataDir(), paths.HistoryFileName)), nil
	case "sqlite":
		return NewSQLiteStore(filepath.Join(paths.DataDir(), paths.HistoryDBName))
	default:
		return nil, fmt.Errorf("unknown history store %q (want file or sqlite)", kind)
	}
}

// DayCutoff returns midnight N days ago (inclusive) in the local timezone.
// For days=1 it returns today at midnight, for days=7 it returns 6 days ago, etc.
func DayCutoff(days int) time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}

// Summary counts runs by outcome.
type Summary struct {
	OK, Failed int
}

// Summarize counts the outcomes in entries.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		if e.Outcome == OutcomeOK {
			s.OK++
		} else {
			s.Failed++
		}
	}
	return s
}

func stamp(e Entry) time.Time {
	if e.Time.IsZero() {
		return time.Now()
	}
	return e.Time
}
