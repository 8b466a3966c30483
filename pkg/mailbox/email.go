// Package mailbox holds the per-user mailbox view state: the email collection, the active
// folder, the selection, and the reducer that mutates them.
package mailbox

import (
	"fmt"
	"net/mail"
	"time"
)

// Label is an optional classification tag on an Email.
type Label string

// Known labels.  The zero value means no label.
const (
	LabelNone          Label = ""
	LabelImportant     Label = "important"
	LabelAcademic      Label = "academic"
	LabelAnnouncements Label = "announcements"
)

// ParseLabel validates a label name.
func ParseLabel(s string) (Label, error) {
	switch l := Label(s); l {
	case LabelNone, LabelImportant, LabelAcademic, LabelAnnouncements:
		return l, nil
	}
	return LabelNone, fmt.Errorf("unknown label %q", s)
}

// Email is a single mailbox message.
type Email struct {
	ID            string
	From          string // Display name.
	FromAddress   string // Routable address.
	Subject       string
	Preview       string
	Date          time.Time
	Read          bool
	Starred       bool
	HasAttachment bool
	Label         Label
}

// Sender returns the sender as a mail.Address.
func (e *Email) Sender() *mail.Address {
	return &mail.Address{Name: e.From, Address: e.FromAddress}
}

// clone returns a shallow copy of the email.
func (e *Email) clone() *Email {
	c := *e
	return &c
}
