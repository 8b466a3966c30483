package rest

import (
	"net/http"

	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/rs/zerolog/log"
)

// ComposeShow renders the compose window state.
func ComposeShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return web.RenderJSON(w, ctx.Manager.Compose(ctx.Identity.Address).Snapshot())
}

// ComposeOpen shows an empty compose window.
func ComposeOpen(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	session := ctx.Manager.Compose(ctx.Identity.Address)
	if err := session.Open(); err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, session.Snapshot())
}

// ComposeReply opens the compose window pre-filled to answer an email.
func ComposeReply(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Identity.Address
	if err := ctx.Manager.OpenReply(name, ctx.Vars["id"]); err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, ctx.Manager.Compose(name).Snapshot())
}

// ComposeUpdate replaces the draft.
func ComposeUpdate(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	var draft compose.Draft
	if err := web.DecodeJSON(req, &draft); err != nil {
		return err
	}
	session := ctx.Manager.Compose(ctx.Identity.Address)
	if err := session.Update(draft); err != nil {
		return apiError(err)
	}
	return web.RenderJSON(w, session.Snapshot())
}

// ComposeClose hides the compose window and discards the draft.
func ComposeClose(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	session := ctx.Manager.Compose(ctx.Identity.Address)
	session.Close()
	return web.RenderJSON(w, session.Snapshot())
}

// composeTransition builds a handler applying a window transition.
func composeTransition(apply func(*compose.Session) error) web.Handler {
	return func(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
		session := ctx.Manager.Compose(ctx.Identity.Address)
		if err := apply(session); err != nil {
			return apiError(err)
		}
		return web.RenderJSON(w, session.Snapshot())
	}
}

// ComposeMinimize toggles the window between open and minimized.
var ComposeMinimize = composeTransition((*compose.Session).Minimize)

// ComposeFullscreen toggles the window between open and fullscreen.
var ComposeFullscreen = composeTransition((*compose.Session).ToggleFullscreen)

// ComposeMaximize restores the window to open.
var ComposeMaximize = composeTransition((*compose.Session).Maximize)

// ComposeSend submits the draft, blocking for the simulated send delay.
func ComposeSend(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Identity.Address
	if err := ctx.Manager.SendDraft(req.Context(), name, sender(ctx)); err != nil {
		log.Debug().Str("module", "rest").Str("mailbox", name).Err(err).Msg("Send failed")
		return apiError(err)
	}
	return web.RenderJSON(w, ctx.Manager.Compose(name).Snapshot())
}
