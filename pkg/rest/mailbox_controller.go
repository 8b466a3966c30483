package rest

import (
	"net/http"
	"net/mail"

	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/outbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

// MailboxList renders the emails visible in the active folder.  The folder query parameter
// changes the active folder first.
func MailboxList(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Identity.Address
	folder := mailbox.Folder(req.URL.Query().Get("folder"))
	view, err := ctx.Manager.List(name, folder)
	if err != nil {
		return apiError(err)
	}
	log.Debug().Str("module", "rest").Str("mailbox", name).Str("folder", string(view.Folder)).
		Int("count", len(view.Emails)).Msg("Listing mailbox")

	folders := make([]string, len(mailbox.Folders))
	for i, f := range mailbox.Folders {
		folders[i] = string(f)
	}
	emails := make([]*model.JSONEmail, len(view.Emails))
	for i, e := range view.Emails {
		emails[i] = emailJSON(e, false)
	}
	return web.RenderJSON(w, &model.JSONMailbox{
		Folder:     string(view.Folder),
		Folders:    folders,
		Emails:     emails,
		Counts:     countsJSON(view.Counts),
		SelectedID: view.SelectedID,
	})
}

// MailboxShow selects an email, marking it read, and renders it.
func MailboxShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	email, err := ctx.Manager.GetEmail(ctx.Identity.Address, ctx.Vars["id"])
	if err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, emailJSON(email, true))
}

// MailboxDelete removes an email.
func MailboxDelete(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Manager.RemoveEmail(ctx.Identity.Address, ctx.Vars["id"]); err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, "OK")
}

// MailboxPurge removes every email from the mailbox.
func MailboxPurge(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Identity.Address
	if err := ctx.Manager.PurgeEmails(name); err != nil {
		return apiError(err)
	}
	log.Debug().Str("module", "rest").Str("mailbox", name).Msg("Purged mailbox")
	return web.RenderJSON(w, "OK")
}

// MailboxToggleStar flips the starred flag of an email.
func MailboxToggleStar(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	email, err := ctx.Manager.ToggleStar(ctx.Identity.Address, ctx.Vars["id"])
	if err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, emailJSON(email, false))
}

// SelectionShow renders the email open in the reading pane.
func SelectionShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	email, ok := ctx.Manager.Selected(ctx.Identity.Address)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return web.RenderJSON(w, emailJSON(email, true))
}

// SelectionClear closes the reading pane.
func SelectionClear(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ctx.Manager.ClearSelection(ctx.Identity.Address)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// OutboxList renders the messages sent by the caller.
func OutboxList(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	sent := ctx.Manager.Sent(ctx.Identity.Address)
	out := make([]*model.JSONSentMessage, len(sent))
	for i, msg := range sent {
		out[i] = sentJSON(msg)
	}
	return web.RenderJSON(w, out)
}

// OutboxSource renders the MIME source of a sent message.
func OutboxSource(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	for _, msg := range ctx.Manager.Sent(ctx.Identity.Address) {
		if msg.ID == ctx.Vars["id"] {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, err := w.Write(msg.Source)
			return err
		}
	}
	http.NotFound(w, req)
	return nil
}

func emailJSON(e *mailbox.Email, withHTML bool) *model.JSONEmail {
	j := &model.JSONEmail{
		ID:            e.ID,
		From:          e.From,
		FromAddress:   e.FromAddress,
		Initial:       stringutil.Initial(e.From),
		Subject:       e.Subject,
		Preview:       e.Preview,
		Date:          e.Date,
		Read:          e.Read,
		Starred:       e.Starred,
		HasAttachment: e.HasAttachment,
		Label:         string(e.Label),
	}
	if withHTML {
		j.PreviewHTML = string(web.TextToHTML(e.Preview))
	}
	return j
}

func countsJSON(c mailbox.Counts) model.JSONCounts {
	return model.JSONCounts{Total: c.Total, Unread: c.Unread, Starred: c.Starred}
}

func sentJSON(msg *outbox.Message) *model.JSONSentMessage {
	return &model.JSONSentMessage{
		ID:         msg.ID,
		Kind:       msg.Kind,
		From:       msg.From.String(),
		To:         addressStrings(msg.To),
		CC:         addressStrings(msg.CC),
		BCC:        addressStrings(msg.BCC),
		Subject:    msg.Subject,
		Recipients: msg.Recipients,
		Date:       msg.Date,
		Size:       msg.Size,
		ReplyTo:    msg.ReplyTo,
	}
}

func addressStrings(addrs []mail.Address) []string {
	if len(addrs) == 0 {
		return nil
	}
	ptrs := make([]*mail.Address, len(addrs))
	for i := range addrs {
		ptrs[i] = &addrs[i]
	}
	return stringutil.StringAddressList(ptrs)
}

// sender is the From address of mail sent by the caller.
func sender(ctx *web.Context) mail.Address {
	return mail.Address{Name: ctx.Identity.Name, Address: ctx.Identity.Address}
}
