// Package message contains the mailbox operations used by the controllers.
package message

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
)

// MakeMetadata creates the extension event payload for an email in the named mailbox.
func MakeMetadata(name string, e *mailbox.Email) *event.EmailMetadata {
	return &event.EmailMetadata{
		Mailbox: name,
		ID:      e.ID,
		From:    e.Sender(),
		Subject: e.Subject,
		Date:    e.Date,
		Read:    e.Read,
		Starred: e.Starred,
		Label:   string(e.Label),
	}
}
