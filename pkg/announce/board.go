// Package announce manages department announcements published from the admin dashboard.
package announce

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/Veenbreeze/aru-connect-mail/pkg/webui/sanitize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned for an unknown announcement id.
var ErrNotFound = errors.New("announcement not found")

// Status of an announcement.
type Status string

// Announcement statuses.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusDraft, StatusPublished, StatusScheduled:
		return st, nil
	}
	return "", fmt.Errorf("unknown announcement status %q", s)
}

// Departments that may issue announcements.
var Departments = []string{
	"Academic Registry",
	"IT Department",
	"Library Services",
	"Finance Office",
	"Research Office",
	"Dean of Students",
	"All Departments",
}

// Audiences an announcement may target.
var Audiences = []string{
	"All Users",
	"All Students",
	"Lecturers",
	"Staff Only",
	"First Year Students",
	"Final Year Students",
}

// Announcement is a single department notice.
type Announcement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Department string    `json:"department"`
	Audience   string    `json:"audience"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     Status    `json:"status"`
	Views      int       `json:"views"`
}

// Form holds the editable announcement fields.
type Form struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Department string `json:"department"`
	Audience   string `json:"audience"`
}

// ValidationError names the form fields that must be filled in.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in all required fields: " + strings.Join(e.Fields, ", ")
}

func (f Form) validate() error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"title", f.Title},
		{"content", f.Content},
		{"department", f.Department},
		{"audience", f.Audience},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Board holds announcements newest first.  It is safe for concurrent use.
type Board struct {
	mu            sync.RWMutex
	announcements []*Announcement
	delay         time.Duration
	extHost       *extension.Host
	now           func() time.Time
}

// NewBoard creates a Board holding copies of seed.  Each submit waits delay before taking
// effect.
func NewBoard(delay time.Duration, extHost *extension.Host, seed ...Announcement) *Board {
	b := &Board{delay: delay, extHost: extHost, now: time.Now}
	for _, a := range seed {
		b.announcements = append(b.announcements, &a)
	}
	return b
}

// List returns copies of every announcement, newest first.
func (b *Board) List() []Announcement {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := make([]Announcement, len(b.announcements))
	for i, a := range b.announcements {
		list[i] = *a
	}
	return list
}

// Get returns a copy of the announcement with id.
func (b *Board) Get(id string) (Announcement, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.index(id); i >= 0 {
		return *b.announcements[i], nil
	}
	return Announcement{}, ErrNotFound
}

// Create adds a new announcement in status after the submit delay.
func (b *Board) Create(ctx context.Context, f Form, status Status) (Announcement, error) {
	f, err := b.prepare(f)
	if err != nil {
		return Announcement{}, err
	}
	a := &Announcement{
		ID:         uuid.NewString(),
		Title:      f.Title,
		Content:    f.Content,
		Department: f.Department,
		Audience:   f.Audience,
		CreatedAt:  b.now(),
		Status:     status,
	}

	b.mu.Lock()
	b.announcements = slices.Insert(b.announcements, 0, a)
	created := *a
	b.mu.Unlock()

	b.submitted(created)
	return created, nil
}

// Update replaces the form fields and status of an existing announcement after the submit
// delay.  Creation time and views are kept.
func (b *Board) Update(ctx context.Context, id string, f Form, status Status) (Announcement,
	error) {
	if _, err := b.Get(id); err != nil {
		return Announcement{}, err
	}
	f, err := b.prepare(f)
	if err != nil {
		return Announcement{}, err
	}

	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		// Deleted while we waited.
		b.mu.Unlock()
		return Announcement{}, ErrNotFound
	}
	a := b.announcements[i]
	a.Title = f.Title
	a.Content = f.Content
	a.Department = f.Department
	a.Audience = f.Audience
	a.Status = status
	updated := *a
	b.mu.Unlock()

	b.submitted(updated)
	return updated, nil
}

// Delete removes the announcement with id.
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return ErrNotFound
	}
	b.announcements = slices.Delete(b.announcements, i, i+1)
	log.Info().Str("module", "announce").Str("id", id).Msg("Deleted announcement")
	return nil
}

// prepare validates and sanitizes the form, then waits out the submit delay.
func (b *Board) prepare(f Form) (Form, error) {
	if err := f.validate(); err != nil {
		return f, err
	}
	content, err := sanitize.HTML(f.Content)
	if err != nil {
		return f, fmt.Errorf("sanitize content: %w", err)
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Content = content
	f.Department = strings.TrimSpace(f.Department)
	f.Audience = strings.TrimSpace(f.Audience)

	time.Sleep(b.delay)
	return f, nil
}

// submitted logs the change, and announces it to extensions once published.
func (b *Board) submitted(a Announcement) {
	log.Info().Str("module", "announce").Str("id", a.ID).Str("status", string(a.Status)).
		Str("department", a.Department).Msg("Saved announcement")
	if a.Status != StatusPublished || b.extHost == nil {
		return
	}
	b.extHost.Events.AfterAnnouncementPublished.Emit(&event.AnnouncementMetadata{
		ID:         a.ID,
		Title:      a.Title,
		Department: a.Department,
		Audience:   a.Audience,
		Status:     string(a.Status),
	})
}

func (b *Board) index(id string) int {
	return slices.IndexFunc(b.announcements, func(a *Announcement) bool { return a.ID == id })
}

// Seed returns the sample announcements shown on a fresh dashboard.
func Seed() []Announcement {
	day := func(d int) time.Time { return time.Date(2024, time.December, d, 0, 0, 0, 0, time.UTC) }
	return []Announcement{
		{
			ID:         "1",
			Title:      "Semester Registration Deadline Extended",
			Content:    "The deadline for semester registration has been extended to December 20th, 2024.",
			Department: "Academic Registry",
			Audience:   "All Students",
			CreatedAt:  day(10),
			Status:     StatusPublished,
			Views:      2847,
		},
		{
			ID:         "2",
			Title:      "Library Operating Hours During Exams",
			Content:    "The university library will have extended hours during the examination period.",
			Department: "Library Services",
			Audience:   "All Users",
			CreatedAt:  day(8),
			Status:     StatusPublished,
			Views:      1523,
		},
		{
			ID:         "3",
			Title:      "System Maintenance - December 15",
			Content:    "Scheduled maintenance will occur on December 15th from 00:00 to 06:00 EAT.",
			Department: "IT Department",
			Audience:   "All Users",
			CreatedAt:  day(6),
			Status:     StatusScheduled,
		},
		{
			ID:         "4",
			Title:      "Research Grant Applications Now Open",
			Content:    "Faculty members can now apply for the 2025 research grant program.",
			Department: "Research Office",
			Audience:   "Lecturers",
			CreatedAt:  day(5),
			Status:     StatusDraft,
		},
	}
}
