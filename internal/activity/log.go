// Package activity keeps an append-only JSONL log of the statements agv
// submitted, so past queries can be listed and searched.
package activity

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one submitted statement.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Backend   string    `json:"backend,omitempty"`
	Query     string    `json:"query"`
	Nodes     int       `json:"nodes,omitempty"`
	Edges     int       `json:"edges,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Path returns the log file location.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "agviewer", "activity.jsonl")
}

// Record appends e to the log, stamping it if Timestamp is zero.
func Record(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Read returns the newest count entries, newest first. count <= 0 returns
// them all. Lines that fail to decode are skipped.
func Read(count int) ([]Entry, error) {
	f, err := os.Open(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	for sc.Scan() {
		var e Entry
		if json.Unmarshal(sc.Bytes(), &e) == nil {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	return entries, nil
}

// Search returns entries whose action or query contains term, ignoring case.
func Search(term string, count int) ([]Entry, error) {
	all, err := Read(0)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)

	var results []Entry
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Action), term) || strings.Contains(strings.ToLower(e.Query), term) {
			results = append(results, e)
			if count > 0 && len(results) >= count {
				break
			}
		}
	}
	return results, nil
}

// Clear removes the log.
func Clear() error {
	err := os.Remove(Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
