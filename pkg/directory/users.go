// Package directory lists CampusMail users for the admin user management page.
package directory

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// RoleAll matches users of any role in Filter.
const RoleAll = "all"

// Status of a user account.
type Status string

// Account statuses.
const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User is a directory entry.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Department  string    `json:"department"`
	Status      Status    `json:"status"`
	LastActive  time.Time `json:"lastActive"`
	EmailsCount int       `json:"emailsCount"`
}

// Stats summarizes account statuses.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Suspended int `json:"suspended"`
}

// Filter returns the users whose name or email contains query, ignoring case, and whose role
// matches role.  An empty role or RoleAll matches every role.
func Filter(users []User, query, role string) []User {
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]User, 0, len(users))
	for _, u := range users {
		if role != "" && role != RoleAll && u.Role != role {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Email), query) {
			continue
		}
		result = append(result, u)
	}
	return result
}

// StatsOf counts users by status.
func StatsOf(users []User) Stats {
	s := Stats{Total: len(users)}
	for _, u := range users {
		switch u.Status {
		case StatusActive:
			s.Active++
		case StatusInactive:
			s.Inactive++
		case StatusSuspended:
			s.Suspended++
		}
	}
	return s
}

// Selection tracks the users ticked for a bulk action.  It is safe for concurrent use.
type Selection struct {
	mu  sync.Mutex
	ids []string
}

// Toggle adds id to the selection, or removes it when already present.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// ToggleAll selects every visible user, or clears the selection when its size already equals
// the number of visible users.
func (s *Selection) ToggleAll(visible []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == len(visible) {
		s.ids = nil
		return
	}
	s.ids = make([]string, len(visible))
	for i, u := range visible {
		s.ids[i] = u.ID
	}
}

// IDs returns the selected user ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// Seed returns the sample directory, with activity times relative to now.
func Seed(now time.Time) []User {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	return []User{
		{"1", "John Doe", "john.doe@students.aru.ac.tz", "student", "Architecture",
			StatusActive, ago(2 * time.Minute), 156},
		{"2", "Dr. Sarah Mwanza", "s.mwanza@aru.ac.tz", "lecturer", "Earth Sciences",
			StatusActive, ago(15 * time.Minute), 847},
		{"3", "James Kimaro", "j.kimaro@students.aru.ac.tz", "student", "Environmental",
			StatusInactive, ago(72 * time.Hour), 42},
		{"4", "Prof. Anna Lyimo", "a.lyimo@aru.ac.tz", "lecturer", "Spatial Planning",
			StatusActive, ago(time.Hour), 1205},
		{"5", "Admin User", "admin@aru.ac.tz", "admin", "IT Department",
			StatusActive, now, 3420},
		{"6", "Grace Mushi", "g.mushi@aru.ac.tz", "staff", "Library",
			StatusActive, ago(30 * time.Minute), 589},
		{"7", "Peter Massawe", "p.massawe@students.aru.ac.tz", "student", "Architecture",
			StatusSuspended, ago(7 * 24 * time.Hour), 23},
		{"8", "Mary Joseph", "m.joseph@aru.ac.tz", "staff", "Finance",
			StatusActive, ago(5 * time.Minute), 732},
	}
}
