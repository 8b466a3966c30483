// Package outbox simulates the mail transport: messages are rendered to MIME, offered to
// extensions for approval, and kept in memory after a fixed delay.
package outbox

import (
	"bytes"
	"net/mail"
	"sync"
	"time"

	"github.com/jhillyerd/enmime/v2"
)

// Message kinds.
const (
	KindCompose = "compose"
	KindBulk    = "bulk"
)

// Message is a sent message.
type Message struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Mailbox    string         `json:"mailbox"`
	From       mail.Address   `json:"from"`
	To         []mail.Address `json:"to"`
	CC         []mail.Address `json:"cc,omitempty"`
	BCC        []mail.Address `json:"bcc,omitempty"`
	Subject    string         `json:"subject"`
	Recipients int            `json:"recipients"`
	Date       time.Time      `json:"date"`
	Size       int64          `json:"size"`
	ReplyTo    string         `json:"replyTo,omitempty"`
	Source     []byte         `json:"-"`
}

// Envelope parses the MIME source of the message.
func (m *Message) Envelope() (*enmime.Envelope, error) {
	return enmime.ReadEnvelope(bytes.NewReader(m.Source))
}

// Outbox keeps the most recently sent messages in memory.
type Outbox struct {
	mu       sync.RWMutex
	capacity int
	messages []*Message
}

// New creates an outbox remembering up to capacity messages.
func New(capacity int) *Outbox {
	return &Outbox{capacity: capacity}
}

// Add records msg, evicting the oldest message when full.
func (o *Outbox) Add(msg *Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	if o.capacity > 0 && len(o.messages) > o.capacity {
		o.messages = append([]*Message(nil), o.messages[len(o.messages)-o.capacity:]...)
	}
}

// Messages returns sent messages, oldest first.  A non-empty mailbox limits the result to
// messages sent by that mailbox.
func (o *Outbox) Messages(mailbox string) []*Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	result := make([]*Message, 0, len(o.messages))
	for _, m := range o.messages {
		if mailbox == "" || m.Mailbox == mailbox {
			result = append(result, m)
		}
	}
	return result
}

// Get returns a message by ID.
func (o *Outbox) Get(id string) (*Message, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, m := range o.messages {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}
