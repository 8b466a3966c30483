// Package mem implements an in-memory mailbox store.
package mem

import (
	"sort"
	"sync"

	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/message"
	"github.com/Veenbreeze/aru-connect-mail/pkg/storage"
	"github.com/rs/zerolog/log"
)

// Store implements an in-memory mailbox store.
type Store struct {
	sync.Mutex
	boxes   map[string]*mbox
	cap     int  // Per-mailbox email cap.
	seed    bool // Start new mailboxes with the sample emails.
	extHost *extension.Host
}

type mbox struct {
	sync.RWMutex
	name    string
	state   *mailbox.State
	compose *compose.Session
}

var _ storage.Store = &Store{}

// New returns an empty memory store.
func New(cfg config.Mail, extHost *extension.Host) *Store {
	return &Store{
		boxes:   make(map[string]*mbox),
		cap:     cfg.MailboxCap,
		seed:    cfg.SeedInbox,
		extHost: extHost,
	}
}

// Update calls f holding the write lock of the named mailbox.
func (s *Store) Update(name string, f func(st *mailbox.State)) {
	s.withMailbox(name, true, func(mb *mbox) { f(mb.state) })
}

// View calls f holding the read lock of the named mailbox.
func (s *Store) View(name string, f func(st *mailbox.State)) {
	s.withMailbox(name, false, func(mb *mbox) { f(mb.state) })
}

// ComposeFor returns the compose session of the named mailbox.
func (s *Store) ComposeFor(name string) (c *compose.Session) {
	s.withMailbox(name, false, func(mb *mbox) { c = mb.compose })
	return c
}

// Deliver adds e to the named mailbox, evicting the oldest emails when over the cap.
func (s *Store) Deliver(name string, e *mailbox.Email) (id string) {
	var stored *mailbox.Email
	var evicted []*mailbox.Email
	s.withMailbox(name, true, func(mb *mbox) {
		id = mb.state.Add(e)
		stored, _ = mb.state.Find(id)
		stored = copyOf(stored)

		if s.cap > 0 {
			// Enforce cap.
			for len(mb.state.Emails) > s.cap {
				eff := mb.state.Delete(mb.state.Emails[0].ID)
				evicted = append(evicted, eff.Email)
			}
		}
	})

	log.Debug().Str("module", "storage").Str("mailbox", name).Str("id", id).
		Int("evicted", len(evicted)).Msg("Delivered email")
	for _, old := range evicted {
		s.extHost.Events.AfterEmailDeleted.Emit(message.MakeMetadata(name, old))
	}
	s.extHost.Events.AfterEmailStored.Emit(message.MakeMetadata(name, stored))
	return id
}

// Purge removes every email from the named mailbox.  The mailbox is not re-seeded.
func (s *Store) Purge(name string) error {
	var emails []*mailbox.Email
	s.withMailbox(name, true, func(mb *mbox) {
		emails = mb.state.Purge()
	})

	// Emit delete events.
	for _, e := range emails {
		s.extHost.Events.AfterEmailDeleted.Emit(message.MakeMetadata(name, e))
	}
	return nil
}

// VisitMailboxes calls f with a copy of each mailbox, in name order, until f returns false.
func (s *Store) VisitMailboxes(f func(name string, st *mailbox.State) (cont bool)) error {
	// Lock store, get names of all mailboxes.
	s.Lock()
	names := make([]string, 0, len(s.boxes))
	for k := range s.boxes {
		names = append(names, k)
	}
	s.Unlock()
	sort.Strings(names)

	// Process mailboxes.
	for _, name := range names {
		var st *mailbox.State
		s.View(name, func(state *mailbox.State) { st = state.Clone() })
		if !f(name, st) {
			break
		}
	}
	return nil
}

// withMailbox gets or creates a mailbox, locks it, then calls f.
func (s *Store) withMailbox(name string, writeLock bool, f func(mb *mbox)) {
	s.Lock()
	mb, ok := s.boxes[name]
	if !ok {
		// Create mailbox
		var seed []*mailbox.Email
		if s.seed {
			seed = mailbox.Seed()
		}
		mb = &mbox{
			name:    name,
			state:   mailbox.NewState(seed...),
			compose: compose.NewSession(),
		}
		s.boxes[name] = mb
	}
	s.Unlock()
	if writeLock {
		mb.Lock()
	} else {
		mb.RLock()
	}
	defer func() {
		if writeLock {
			mb.Unlock()
		} else {
			mb.RUnlock()
		}
	}()
	f(mb)
}

func copyOf(e *mailbox.Email) *mailbox.Email {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
