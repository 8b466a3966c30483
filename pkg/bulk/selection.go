package bulk

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrSending is returned while a previous bulk send is still in flight.
var ErrSending = errors.New("bulk email is already being sent")

// ValidationError explains why the form cannot be sent.
type ValidationError struct {
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Message is a validated bulk email ready for the transport.
type Message struct {
	Subject     string
	Body        string
	Groups      []Segment
	Departments []Segment
	Recipients  int
}

// Sender delivers a bulk message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, m Message) error

// Send calls f(ctx, m).
func (f SenderFunc) Send(ctx context.Context, m Message) error {
	return f(ctx, m)
}

// Form is a point in time copy of a Selection.
type Form struct {
	Groups          []string `json:"groups"`
	Departments     []string `json:"departments"`
	Subject         string   `json:"subject"`
	Body            string   `json:"body"`
	Sending         bool     `json:"sending"`
	TotalRecipients int      `json:"totalRecipients"`
}

// Selection is the bulk email form.  It is safe for concurrent use.
type Selection struct {
	mu          sync.Mutex
	catalog     Catalog
	history     *History
	groups      []string
	departments []string
	subject     string
	body        string
	sending     bool
}

// NewSelection creates an empty form addressing segments of catalog.  Successful sends are
// recorded into history.
func NewSelection(catalog Catalog, history *History) *Selection {
	return &Selection{catalog: catalog, history: history}
}

// Catalog returns the segments this form addresses.
func (s *Selection) Catalog() Catalog {
	return s.catalog
}

// ToggleGroup adds or removes a recipient group.  Unknown IDs are ignored.
func (s *Selection) ToggleGroup(id string) bool {
	if _, ok := s.catalog.Group(id); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = toggle(s.groups, id)
	return true
}

// ToggleDepartment adds or removes a department.  Unknown IDs are ignored.
func (s *Selection) ToggleDepartment(id string) bool {
	if _, ok := s.catalog.Department(id); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = toggle(s.departments, id)
	return true
}

func toggle(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

// SetContent replaces the subject and body.
func (s *Selection) SetContent(subject, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = subject
	s.body = body
}

// TotalRecipients sums the member counts of the selected groups and departments.  Segments
// overlap, eg All Users contains All Students, and members are counted once per segment.
func (s *Selection) TotalRecipients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

func (s *Selection) total() int {
	count := 0
	for _, id := range s.groups {
		g, _ := s.catalog.Group(id)
		count += g.Count
	}
	for _, id := range s.departments {
		d, _ := s.catalog.Department(id)
		count += d.Count
	}
	return count
}

// Validate reports whether the form can be sent, checking content before recipients.
func (s *Selection) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate()
}

func (s *Selection) validate() error {
	var missing []string
	if strings.TrimSpace(s.subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(s.body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Reason: "please fill in the subject and message body",
			Fields: missing,
		}
	}
	if len(s.groups) == 0 && len(s.departments) == 0 {
		return &ValidationError{
			Reason: "please select at least one recipient group",
			Fields: []string{"recipients"},
		}
	}
	return nil
}

// Send validates the form and hands the message to sender.  On success the send is recorded in
// history and the form is reset; on failure the form is kept for another attempt.
func (s *Selection) Send(ctx context.Context, sender Sender) (Entry, error) {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return Entry{}, ErrSending
	}
	if err := s.validate(); err != nil {
		s.mu.Unlock()
		return Entry{}, err
	}
	s.sending = true
	msg := s.message()
	s.mu.Unlock()

	err := sender.Send(ctx, msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Subject:    msg.Subject,
		Recipients: msg.Recipients,
		Status:     StatusSent,
		At:         time.Now(),
	}
	if s.history != nil {
		s.history.Add(entry)
	}
	s.groups = nil
	s.departments = nil
	s.subject = ""
	s.body = ""
	return entry, nil
}

// message builds the outgoing message.  Lock must be held.
func (s *Selection) message() Message {
	msg := Message{Subject: s.subject, Body: s.body, Recipients: s.total()}
	for _, id := range s.groups {
		g, _ := s.catalog.Group(id)
		msg.Groups = append(msg.Groups, g)
	}
	for _, id := range s.departments {
		d, _ := s.catalog.Department(id)
		msg.Departments = append(msg.Departments, d)
	}
	return msg
}

// Form returns a copy of the form state.
func (s *Selection) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Form{
		Groups:          append([]string{}, s.groups...),
		Departments:     append([]string{}, s.departments...),
		Subject:         s.subject,
		Body:            s.body,
		Sending:         s.sending,
		TotalRecipients: s.total(),
	}
}
