// Package event defines the payloads emitted through the extension host.
package event

import (
	"net/mail"
	"time"
)

const (
	// ActionAllow lets the operation proceed.
	ActionAllow = iota
	// ActionDeny rejects the operation.
	ActionDeny
)

// EmailMetadata describes an email inside a user's mailbox.
type EmailMetadata struct {
	Mailbox string // Owning mailbox address.
	ID      string
	From    *mail.Address
	Subject string
	Date    time.Time
	Read    bool
	Starred bool
	Label   string
}

// OutboundMessage describes a message handed to the simulated transport.
type OutboundMessage struct {
	ID         string
	Kind       string // "compose" or "bulk".
	Mailbox    string // Sending user's mailbox address.
	From       mail.Address
	To         []mail.Address
	CC         []mail.Address
	BCC        []mail.Address
	Subject    string
	Recipients int // Audience size; bulk sends address segments rather than mailboxes.
	Size       int64
}

// SendVerdict is returned by BeforeMessageSent listeners.
type SendVerdict struct {
	Action int
	Reason string
}

// AnnouncementMetadata describes a department announcement.
type AnnouncementMetadata struct {
	ID         string
	Title      string
	Department string
	Audience   string
	Status     string
}
