package rest

import (
	"fmt"
	"net/http"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/rs/zerolog/log"
)

// BulkShow renders the bulk email form of the caller.
func BulkShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return renderBulk(w, ctx, http.StatusOK)
}

func renderBulk(w http.ResponseWriter, ctx *web.Context, code int) error {
	sel := ctx.Manager.Bulk(ctx.Identity.Address)
	return web.RenderJSONStatus(w, code, &model.JSONBulk{
		Catalog: sel.Catalog(),
		Form:    sel.Form(),
		History: ctx.Manager.BulkSent(),
	})
}

// BulkContent sets the subject and body of the bulk email.
func BulkContent(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	var body model.JSONBulkContent
	if err := web.DecodeJSON(req, &body); err != nil {
		return err
	}
	ctx.Manager.Bulk(ctx.Identity.Address).SetContent(body.Subject, body.Body)
	return renderBulk(w, ctx, http.StatusOK)
}

// BulkToggleGroup adds or removes a recipient group.
func BulkToggleGroup(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	id := ctx.Vars["id"]
	if !ctx.Manager.Bulk(ctx.Identity.Address).ToggleGroup(id) {
		return web.NewStatusError(http.StatusNotFound, fmt.Errorf("unknown group %q", id))
	}
	return renderBulk(w, ctx, http.StatusOK)
}

// BulkToggleDepartment adds or removes a department.
func BulkToggleDepartment(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	id := ctx.Vars["id"]
	if !ctx.Manager.Bulk(ctx.Identity.Address).ToggleDepartment(id) {
		return web.NewStatusError(http.StatusNotFound, fmt.Errorf("unknown department %q", id))
	}
	return renderBulk(w, ctx, http.StatusOK)
}

// BulkSend sends the bulk email, blocking for the simulated send delay.
func BulkSend(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Identity.Address
	entry, err := ctx.Manager.SendBulk(req.Context(), name, sender(ctx))
	if err != nil {
		return apiError(err)
	}
	log.Info().Str("module", "rest").Str("mailbox", name).Int("recipients", entry.Recipients).
		Msg("Bulk email sent")
	return web.RenderJSON(w, entry)
}

// AnnouncementList renders every announcement, newest first.
func AnnouncementList(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return web.RenderJSON(w, ctx.Board.List())
}

// AnnouncementShow renders one announcement.
func AnnouncementShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	a, err := ctx.Board.Get(ctx.Vars["id"])
	if err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, a)
}

// AnnouncementCreate saves a new announcement.
func AnnouncementCreate(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	form, status, err := announcementRequest(req)
	if err != nil {
		return err
	}
	a, err := ctx.Board.Create(req.Context(), form, status)
	if err != nil {
		return apiError(err)
	}
	return web.RenderJSONStatus(w, http.StatusCreated, a)
}

// AnnouncementUpdate replaces an announcement.
func AnnouncementUpdate(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	form, status, err := announcementRequest(req)
	if err != nil {
		return err
	}
	a, err := ctx.Board.Update(req.Context(), ctx.Vars["id"], form, status)
	if err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, a)
}

// AnnouncementDelete removes an announcement.
func AnnouncementDelete(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Board.Delete(ctx.Vars["id"]); err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, "OK")
}

// announcementRequest decodes the body; the status defaults to published.
func announcementRequest(req *http.Request) (announce.Form, announce.Status, error) {
	var body model.JSONAnnouncementRequest
	if err := web.DecodeJSON(req, &body); err != nil {
		return announce.Form{}, "", err
	}
	status := announce.StatusPublished
	if body.Status != "" {
		var err error
		if status, err = announce.ParseStatus(body.Status); err != nil {
			return announce.Form{}, "", badRequest(err, "status")
		}
	}
	return body.Form, status, nil
}

// UserList renders the user directory filtered by the q and role query parameters.
func UserList(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return web.RenderJSON(w, usersJSON(req, ctx))
}

// UserSelect toggles a user, or every listed user when no id is given, in the admin selection.
func UserSelect(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	var body model.JSONUserSelection
	if err := web.DecodeJSON(req, &body); err != nil {
		return err
	}
	if body.ID == "" {
		ctx.UserSelection.ToggleAll(visibleUsers(req, ctx))
	} else {
		ctx.UserSelection.Toggle(body.ID)
	}
	return web.RenderJSON(w, usersJSON(req, ctx))
}

func visibleUsers(req *http.Request, ctx *web.Context) []directory.User {
	q := req.URL.Query()
	role := q.Get("role")
	if role == "" {
		role = directory.RoleAll
	}
	return directory.Filter(ctx.Users, q.Get("q"), role)
}

func usersJSON(req *http.Request, ctx *web.Context) *model.JSONUsers {
	selected := ctx.UserSelection.IDs()
	if selected == nil {
		selected = []string{}
	}
	return &model.JSONUsers{
		Users:    visibleUsers(req, ctx),
		Stats:    directory.StatsOf(ctx.Users),
		Selected: selected,
	}
}
