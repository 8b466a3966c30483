// Package compose models the lifecycle of the compose window and its draft.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
)

const (
	replyPrefix     = "Re: "
	replyQuoteLimit = 400
)

var (
	// ErrClosed is returned when operating on a closed compose window.
	ErrClosed = errors.New("compose window is closed")

	// ErrSending is returned while a previous submit is still in flight.
	ErrSending = errors.New("message is already being sent")
)

// Visibility of the compose window.
type Visibility string

// Compose window visibilities.
const (
	Closed     Visibility = "closed"
	Open       Visibility = "open"
	Minimized  Visibility = "minimized"
	Fullscreen Visibility = "fullscreen"
)

// SendStatus tracks the most recent submit attempt.
type SendStatus string

// Send statuses.
const (
	StatusIdle    SendStatus = "idle"
	StatusSending SendStatus = "sending"
	StatusSent    SendStatus = "sent"
	StatusFailed  SendStatus = "failed"
)

// Draft holds the editable compose fields.  Address fields are free text until sent.
type Draft struct {
	To      string `json:"to"`
	CC      string `json:"cc"`
	BCC     string `json:"bcc"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ValidationError names the draft fields that must be corrected before sending.  Err holds the
// underlying problem when a field is present but unusable.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", strings.Join(e.Fields, ", "), e.Err)
	}
	return fmt.Sprintf("required field(s) missing: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the draft is ready to send.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(d.Subject) == "" {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Sender delivers a validated draft.
type Sender interface {
	Send(ctx context.Context, d Draft) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, d Draft) error

// Send calls f(ctx, d).
func (f SenderFunc) Send(ctx context.Context, d Draft) error {
	return f(ctx, d)
}

// Snapshot is a point in time copy of a Session, suitable for rendering.
type Snapshot struct {
	Visibility Visibility `json:"visibility"`
	Status     SendStatus `json:"status"`
	Draft      Draft      `json:"draft"`
	ReplyTo    string     `json:"replyTo,omitempty"`
	LastError  string     `json:"lastError,omitempty"`
}

// Session is the compose window of a single user.  It is safe for concurrent use; Submit holds
// the lock only while changing state, not while the sender runs.
type Session struct {
	mu         sync.Mutex
	visibility Visibility
	status     SendStatus
	draft      Draft
	replyTo    string
	lastError  string
}

// NewSession returns a closed session.
func NewSession() *Session {
	return &Session{visibility: Closed, status: StatusIdle}
}

// Open shows an empty compose window.  Opening an already visible window leaves it as is.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSending {
		return ErrSending
	}
	if s.visibility != Closed {
		return nil
	}
	s.reset(Open)
	return nil
}

// OpenReply shows the compose window pre-filled to answer e.  Any unsent draft is replaced.
func (s *Session) OpenReply(e *mailbox.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSending {
		return ErrSending
	}

	s.reset(Open)
	s.replyTo = e.ID
	if e.FromAddress != "" {
		s.draft.To = e.Sender().String()
	}
	s.draft.Subject = e.Subject
	if !strings.HasPrefix(strings.ToLower(e.Subject), strings.ToLower(replyPrefix)) {
		s.draft.Subject = replyPrefix + e.Subject
	}
	s.draft.Body = fmt.Sprintf("\n\nOn %s, %s wrote:\n> %s\n",
		e.Date.Format("Mon, Jan 2, 2006"), e.From, stringutil.Excerpt(e.Preview, replyQuoteLimit))

	return nil
}

// Minimize toggles between open and minimized.  A fullscreen window minimizes.
func (s *Session) Minimize() error {
	return s.transition(func() {
		if s.visibility == Minimized {
			s.visibility = Open
		} else {
			s.visibility = Minimized
		}
	})
}

// ToggleFullscreen toggles between open and fullscreen.  A minimized window goes fullscreen.
func (s *Session) ToggleFullscreen() error {
	return s.transition(func() {
		if s.visibility == Fullscreen {
			s.visibility = Open
		} else {
			s.visibility = Fullscreen
		}
	})
}

// Maximize restores a minimized or fullscreen window to open.
func (s *Session) Maximize() error {
	return s.transition(func() {
		s.visibility = Open
	})
}

func (s *Session) transition(change func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visibility == Closed {
		return ErrClosed
	}
	change()
	return nil
}

// Update replaces the draft fields.
func (s *Session) Update(d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visibility == Closed {
		return ErrClosed
	}
	if s.status == StatusSending {
		return ErrSending
	}
	s.draft = d
	return nil
}

// Submit validates the draft and hands it to sender.  On success the window closes and the
// draft is cleared.  On failure the window stays open with the draft intact, and Status is
// failed.
func (s *Session) Submit(ctx context.Context, sender Sender) error {
	s.mu.Lock()
	if s.status == StatusSending {
		s.mu.Unlock()
		return ErrSending
	}
	if s.visibility == Closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.draft.Validate(); err != nil {
		s.status = StatusFailed
		s.lastError = err.Error()
		s.mu.Unlock()
		return err
	}
	s.status = StatusSending
	s.lastError = ""
	draft := s.draft
	s.mu.Unlock()

	err := sender.Send(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusFailed
		s.lastError = err.Error()
		if s.visibility == Closed {
			// Closed while sending; bring the draft back.
			s.visibility = Open
		}
		s.draft = draft
		return err
	}
	s.reset(Closed)
	s.status = StatusSent
	return nil
}

// Close hides the window and discards the draft.  Closing while a submit is in flight lets the
// send complete.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSending {
		s.visibility = Closed
		return
	}
	s.reset(Closed)
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Visibility: s.visibility,
		Status:     s.status,
		Draft:      s.draft,
		ReplyTo:    s.replyTo,
		LastError:  s.lastError,
	}
}

// reset clears the draft and moves to v.  Lock must be held.
func (s *Session) reset(v Visibility) {
	s.visibility = v
	s.status = StatusIdle
	s.draft = Draft{}
	s.replyTo = ""
	s.lastError = ""
}
