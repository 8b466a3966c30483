// Package storage contains implementation independent mailbox storage logic.
package storage

import (
	"errors"

	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
)

// ErrNotExist indicates the requested email does not exist.
var ErrNotExist = errors.New("email does not exist")

// Store hosts the mailbox state and compose session of each user.  Mailboxes are created on
// first use.
type Store interface {
	// Update calls f holding the write lock of the named mailbox.
	Update(name string, f func(st *mailbox.State))
	// View calls f holding the read lock of the named mailbox.  f must not modify st.
	View(name string, f func(st *mailbox.State))
	// ComposeFor returns the compose session of the named mailbox.
	ComposeFor(name string) *compose.Session
	// Deliver adds an incoming email to the named mailbox, returning its new ID.
	Deliver(name string, e *mailbox.Email) (id string)
	// Purge removes every email from the named mailbox.
	Purge(name string) error
	// VisitMailboxes calls f with a copy of each mailbox until f returns false.
	VisitMailboxes(f func(name string, st *mailbox.State) (cont bool)) error
}
