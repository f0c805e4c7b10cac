// Package history keeps a bounded, newest-first log of scrape jobs.
package history

import (
	"sync"
	"time"

	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/normalize"
)

const (
	// DefaultSize is the number of entries kept when no size is given.
	DefaultSize = 20

	maxURLLen      = 50
	maxSelectorLen = 30

	StatusSuccess = "✅"
	StatusFailure = "❌"

	timeLayout = "15:04:05"
)

// Recorder is a fixed-size job history. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	size    int
	entries []models.HistoryEntry
}

// New creates a Recorder keeping at most size entries. size <= 0 selects
// DefaultSize.
func New(size int) *Recorder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Recorder{size: size, entries: make([]models.HistoryEntry, 0, size)}
}

// Add records one job at the front, dropping the oldest entry when full.
func (r *Recorder) Add(url string, fetcher models.Strategy, selector string, count int, success bool, at time.Time) {
	status := StatusFailure
	if success {
		status = StatusSuccess
	}
	e := models.HistoryEntry{
		URL:      shorten(url, maxURLLen),
		Fetcher:  string(fetcher),
		Selector: shorten(selector, maxSelectorLen),
		Count:    count,
		Status:   status,
		Time:     at.Format(timeLayout),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, models.HistoryEntry{})
	copy(r.entries[1:], r.entries)
	r.entries[0] = e
	if len(r.entries) > r.size {
		r.entries = r.entries[:r.size]
	}
}

// Entries returns a copy of the history, newest first.
func (r *Recorder) Entries() []models.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func shorten(s string, max int) string {
	if t := normalize.Truncate(s, max); t != s {
		return t + "..."
	}
	return s
}
