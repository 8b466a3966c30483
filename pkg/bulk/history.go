package bulk

import (
	"sync"
	"time"
)

// Status of a bulk send.
type Status string

// Bulk send statuses.
const (
	StatusSent      Status = "sent"
	StatusScheduled Status = "scheduled"
)

// Entry records one bulk send.
type Entry struct {
	Subject    string    `json:"subject"`
	Recipients int       `json:"recipients"`
	Status     Status    `json:"status"`
	At         time.Time `json:"at"`
}

// History keeps the most recent bulk sends, newest first.
type History struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
}

// NewHistory creates a history holding at most limit entries.
func NewHistory(limit int, seed ...Entry) *History {
	h := &History{limit: limit}
	for i := len(seed) - 1; i >= 0; i-- {
		h.Add(seed[i])
	}
	return h
}

// Add records e as the newest entry, evicting the oldest when full.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]Entry{e}, h.entries...)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries returns a copy of the history, newest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Entry{}, h.entries...)
}

// SeedHistory returns sample sends relative to now, in display order.
func SeedHistory(now time.Time) []Entry {
	tomorrow := now.AddDate(0, 0, 1)
	nine := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, now.Location())
	return []Entry{
		{Subject: "End of Year Message", Recipients: 3256, Status: StatusSent,
			At: now.Add(-2 * time.Hour)},
		{Subject: "System Maintenance Notice", Recipients: 3256, Status: StatusSent,
			At: now.Add(-24 * time.Hour)},
		{Subject: "Holiday Schedule Update", Recipients: 2847, Status: StatusSent,
			At: now.Add(-72 * time.Hour)},
		{Subject: "Research Grant Deadline", Recipients: 245, Status: StatusScheduled,
			At: nine},
	}
}
