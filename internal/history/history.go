// Package history implements the append-only build ledger and the
// last-build marker file.
//
// The ledger is a plain text file with one record per line:
//
//	2026-08-30 14:02:11 A10.3[F|t|+] commit=4f9c2a1e...
//
// Records are appended exactly once per completed or dry-run build
// attempt and are never mutated or deleted. The most recent record is
// the sole input to version suggestion and auto-parent fill.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Commit-hash sentinels used when no real hash applies.
const (
	// CommitNone records a build attempt where the user declined the
	// commit step (or the tree was clean).
	CommitNone = "no-commit"

	// CommitDryRun records a dry-run attempt that mutated nothing.
	CommitDryRun = "dry-run"

	// CommitUnknown records an attempt where the hash could not be read.
	CommitUnknown = "no-hash"
)

// Record is one ledger entry.
type Record struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Tag       string    `json:"tag" yaml:"tag"`

	// Commit is a full hash or one of the sentinels above.
	Commit string `json:"commit" yaml:"commit"`
}

// Timestamp layouts. Writing always uses second precision; reading
// accepts the older minute-precision form as well.
const (
	tsLayout       = "2006-01-02 15:04:05"
	tsLayoutMinute = "2006-01-02 15:04"
)

// Line renders the record in ledger format.
func (r Record) Line() string {
	return fmt.Sprintf("%s %s commit=%s", r.Timestamp.Format(tsLayout), r.Tag, r.Commit)
}

// Ledger reads and appends build records under a state directory.
// The directory holds two files: the append-only ledger (history.log)
// and the last-build marker, overwritten on every attempt.
type Ledger struct {
	dir string
}

const (
	ledgerFile = "history.log"
	markerFile = "last-build"
)

// New creates a Ledger rooted at dir. The directory is created lazily
// on first write.
func New(dir string) *Ledger {
	return &Ledger{dir: dir}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return filepath.Join(l.dir, ledgerFile)
}

// MarkerPath returns the last-build marker file path.
func (l *Ledger) MarkerPath() string {
	return filepath.Join(l.dir, markerFile)
}

// Append writes one record to the end of the ledger.
func (l *Ledger) Append(r Record) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, r.Line()); err != nil {
		return fmt.Errorf("appending to ledger: %w", err)
	}
	return nil
}

// WriteMarker overwrites the last-build marker with the composed tag.
func (l *Ledger) WriteMarker(tag string) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	return os.WriteFile(l.MarkerPath(), []byte(tag+"\n"), 0644)
}

// All returns every parseable record in ledger order. Unparseable lines
// are skipped rather than failing the read: the ledger survives hand
// edits and format drift from earlier tool generations.
func (l *Ledger) All() ([]Record, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if r, ok := parseLine(scanner.Text()); ok {
			records = append(records, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return records, nil
}

// Last returns the most recent record. The second return value is false
// when the ledger is empty or absent.
func (l *Ledger) Last() (Record, bool, error) {
	records, err := l.All()
	if err != nil || len(records) == 0 {
		return Record{}, false, err
	}
	return records[len(records)-1], true, nil
}

// parseLine parses one ledger line:
//
//	{YYYY-MM-DD} {HH:MM[:SS]} {tag} commit={hash-or-sentinel}
func parseLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Record{}, false
	}

	tsStr := fields[0] + " " + fields[1]
	ts, err := time.Parse(tsLayout, tsStr)
	if err != nil {
		ts, err = time.Parse(tsLayoutMinute, tsStr)
		if err != nil {
			return Record{}, false
		}
	}

	commit, ok := strings.CutPrefix(fields[3], "commit=")
	if !ok || commit == "" {
		return Record{}, false
	}

	return Record{Timestamp: ts, Tag: fields[2], Commit: commit}, true
}
