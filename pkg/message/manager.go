package message

import (
	"context"
	"net/mail"
	"sync"

	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/outbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/Veenbreeze/aru-connect-mail/pkg/storage"
	"github.com/Veenbreeze/aru-connect-mail/pkg/webui/sanitize"
	"github.com/rs/zerolog/log"
)

// Length of the preview stored with locally delivered email.
const previewLen = 200

// View is a rendered mailbox listing.
type View struct {
	Folder     mailbox.Folder
	Emails     []*mailbox.Email // Copies, safe to keep.
	Counts     mailbox.Counts
	SelectedID string
}

// Manager is the interface controllers use to interact with mailboxes.
type Manager interface {
	List(name string, folder mailbox.Folder) (*View, error)
	GetEmail(name, id string) (*mailbox.Email, error)
	Selected(name string) (*mailbox.Email, bool)
	ClearSelection(name string)
	ToggleStar(name, id string) (*mailbox.Email, error)
	RemoveEmail(name, id string) error
	PurgeEmails(name string) error
	Compose(name string) *compose.Session
	OpenReply(name, id string) error
	SendDraft(ctx context.Context, name string, from mail.Address) error
	Bulk(name string) *bulk.Selection
	SendBulk(ctx context.Context, name string, from mail.Address) (bulk.Entry, error)
	BulkSent() []bulk.Entry
	Sent(name string) []*outbox.Message
	MailboxForAddress(address string) (string, error)
}

// StoreManager is a mailbox Manager backed by the storage.Store.
type StoreManager struct {
	AddrPolicy  *policy.Addressing
	Store       storage.Store
	Transport   *outbox.Simulator
	ExtHost     *extension.Host
	BulkCatalog bulk.Catalog
	BulkHistory *bulk.History

	bulkMu sync.Mutex
	bulk   map[string]*bulk.Selection
}

var _ Manager = &StoreManager{}

// List returns the emails of the named mailbox visible in folder.  An empty folder keeps the
// active folder.
func (s *StoreManager) List(name string, folder mailbox.Folder) (*View, error) {
	if folder != "" {
		if _, err := mailbox.ParseFolder(string(folder)); err != nil {
			return nil, err
		}
	}
	view := &View{}
	s.Store.Update(name, func(st *mailbox.State) {
		if folder != "" {
			st.SetFolder(folder)
		}
		c := st.Clone()
		view.Folder = c.ActiveFolder
		view.Emails = c.Visible()
		view.Counts = c.Counts()
		if _, ok := c.Selected(); ok {
			view.SelectedID = c.SelectedID
		}
	})
	return view, nil
}

// GetEmail selects the email, marking it read, and returns a copy.
func (s *StoreManager) GetEmail(name, id string) (*mailbox.Email, error) {
	var email *mailbox.Email
	var changed bool
	s.Store.Update(name, func(st *mailbox.State) {
		e, ok := st.Find(id)
		if !ok {
			return
		}
		changed = !e.Read
		st.Select(id)
		email = copyOf(e)
	})
	if email == nil {
		return nil, storage.ErrNotExist
	}
	if changed {
		log.Debug().Str("module", "manager").Str("mailbox", name).Str("id", id).
			Msg("Marking as read")
		s.ExtHost.Events.AfterEmailUpdated.Emit(MakeMetadata(name, email))
	}
	return email, nil
}

// Selected returns a copy of the selected email.
func (s *StoreManager) Selected(name string) (email *mailbox.Email, ok bool) {
	s.Store.View(name, func(st *mailbox.State) {
		var e *mailbox.Email
		if e, ok = st.Selected(); ok {
			email = copyOf(e)
		}
	})
	return email, ok
}

// ClearSelection closes the reading pane.
func (s *StoreManager) ClearSelection(name string) {
	s.Store.Update(name, func(st *mailbox.State) { st.ClearSelection() })
}

// ToggleStar flips the starred flag of an email, returning the updated copy.
func (s *StoreManager) ToggleStar(name, id string) (*mailbox.Email, error) {
	eff := s.reduce(name, mailbox.ToggleStar{ID: id})
	if !eff.Changed {
		return nil, storage.ErrNotExist
	}
	s.ExtHost.Events.AfterEmailUpdated.Emit(MakeMetadata(name, eff.Email))
	return eff.Email, nil
}

// RemoveEmail deletes an email.
func (s *StoreManager) RemoveEmail(name, id string) error {
	eff := s.reduce(name, mailbox.Delete{ID: id})
	if !eff.Changed {
		return storage.ErrNotExist
	}
	s.ExtHost.Events.AfterEmailDeleted.Emit(MakeMetadata(name, eff.Email))
	return nil
}

func (s *StoreManager) reduce(name string, a mailbox.Action) (eff mailbox.Effect) {
	s.Store.Update(name, func(st *mailbox.State) { eff = mailbox.Reduce(st, a) })
	log.Debug().Str("module", "manager").Str("mailbox", name).Str("id", a.TargetID()).
		Bool("changed", eff.Changed).Msgf("Reduced %T", a)
	return eff
}

// PurgeEmails removes every email from the named mailbox.
func (s *StoreManager) PurgeEmails(name string) error {
	return s.Store.Purge(name)
}

// Compose returns the compose session of the named mailbox.
func (s *StoreManager) Compose(name string) *compose.Session {
	return s.Store.ComposeFor(name)
}

// OpenReply opens the compose session pre-filled to answer an email.
func (s *StoreManager) OpenReply(name, id string) error {
	var email *mailbox.Email
	s.Store.View(name, func(st *mailbox.State) {
		if e, ok := st.Find(id); ok {
			email = copyOf(e)
		}
	})
	if email == nil {
		return storage.ErrNotExist
	}
	return s.Compose(name).OpenReply(email)
}

// SendDraft submits the compose draft of the named mailbox through the transport.  Copies
// addressed to campus mailboxes are delivered locally.
func (s *StoreManager) SendDraft(ctx context.Context, name string, from mail.Address) error {
	session := s.Compose(name)
	replyTo := session.Snapshot().ReplyTo
	return session.Submit(ctx, compose.SenderFunc(func(ctx context.Context, d compose.Draft) error {
		msg, err := s.Transport.SendDraft(ctx, from, replyTo, d)
		if err != nil {
			return err
		}
		s.deliverLocal(msg, d.Body)
		return nil
	}))
}

// deliverLocal places a copy of msg into each addressed campus mailbox.
func (s *StoreManager) deliverLocal(msg *outbox.Message, body string) {
	seen := make(map[string]bool)
	fromName := msg.From.Name
	if fromName == "" {
		fromName = msg.From.Address
	}
	for _, list := range [][]mail.Address{msg.To, msg.CC, msg.BCC} {
		for _, addr := range list {
			if !s.AddrPolicy.IsLocal(addr.Address) {
				continue
			}
			key, err := s.AddrPolicy.MailboxFor(addr.Address)
			if err != nil || seen[key] {
				continue
			}
			seen[key] = true
			s.Store.Deliver(key, &mailbox.Email{
				From:        fromName,
				FromAddress: msg.From.Address,
				Subject:     msg.Subject,
				Preview:     sanitize.Preview(body, previewLen),
				Date:        msg.Date,
			})
		}
	}
}

// Bulk returns the bulk email form of the named mailbox.
func (s *StoreManager) Bulk(name string) *bulk.Selection {
	s.bulkMu.Lock()
	defer s.bulkMu.Unlock()
	if s.bulk == nil {
		s.bulk = make(map[string]*bulk.Selection)
	}
	sel, ok := s.bulk[name]
	if !ok {
		sel = bulk.NewSelection(s.BulkCatalog, s.BulkHistory)
		s.bulk[name] = sel
	}
	return sel
}

// SendBulk sends the bulk email form of the named mailbox through the transport.
func (s *StoreManager) SendBulk(ctx context.Context, name string, from mail.Address) (bulk.Entry,
	error) {
	return s.Bulk(name).Send(ctx, bulk.SenderFunc(func(ctx context.Context, m bulk.Message) error {
		_, err := s.Transport.SendBulk(ctx, from, m)
		return err
	}))
}

// BulkSent returns the bulk send history shared by all admins, newest first.
func (s *StoreManager) BulkSent() []bulk.Entry {
	if s.BulkHistory == nil {
		return nil
	}
	return s.BulkHistory.Entries()
}

// Sent returns the messages sent by the named mailbox, oldest first.
func (s *StoreManager) Sent(name string) []*outbox.Message {
	return s.Transport.Outbox.Messages(name)
}

// MailboxForAddress parses an email address to return the canonical mailbox name.
func (s *StoreManager) MailboxForAddress(address string) (string, error) {
	return s.AddrPolicy.MailboxFor(address)
}

func copyOf(e *mailbox.Email) *mailbox.Email {
	c := *e
	return &c
}
