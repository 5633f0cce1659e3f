package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Mavwarf/mkicon/internal/config"
	"github.com/Mavwarf/mkicon/internal/eventlog"
)

// recordRun appends e to the configured history store. Failures are
// reported but never change the exit code.
func recordRun(kind string, e eventlog.Entry) {
	store, err := eventlog.Open(kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history: %v\n", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	if err := store.Log(e); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history: %v\n", err)
	}
}

func historyCmd(args []string, configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := eventlog.Open(cfg.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if store == nil {
		fmt.Println(`History is disabled. Set "history": "file" or "sqlite" in mkicon-config.json.`)
		return
	}
	defer store.Close()

	if len(args) > 0 {
		switch args[0] {
		case "clear":
			if err := store.Clear(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("History cleared.")
			return
		case "clean":
			historyClean(store, args[1:])
			return
		}
	}

	days, err := parseDays(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	entries, err := store.Entries(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	renderHistory(os.Stdout, entries)
}

func historyClean(store eventlog.Store, args []string) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: history clean requires a number of days\n")
		os.Exit(1)
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days <= 0 {
		fmt.Fprintf(os.Stderr, "Error: days must be a positive integer\n")
		os.Exit(1)
	}
	n, err := store.Clean(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d entries older than %d days.\n", n, days)
}

// parseDays reads an optional "--days N" from args. 0 means all entries.
func parseDays(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 2:
		if args[0] == "--days" {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("days must be a positive integer")
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("expected history [--days N], history clean <days> or history clear")
}

func renderHistory(w io.Writer, entries []eventlog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-6s  %-8s  %6s  %s -> %s\n",
			e.Time.Format("2006-01-02 15:04:05"),
			e.Outcome,
			e.Compiler,
			formatDuration(e.Duration),
			filepath.Base(e.Source),
			filepath.Base(e.Output))
		if e.Error != "" {
			fmt.Fprintf(w, "    %s\n", e.Error)
		}
	}
	s := eventlog.Summarize(entries)
	fmt.Fprintf(w, "\n%d builds: %d ok, %d failed\n", s.OK+s.Failed, s.OK, s.Failed)
}
