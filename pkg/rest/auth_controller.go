package rest

import (
	"net/http"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/rs/zerolog/log"
)

// Login checks credentials and starts a session.
func Login(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	var body model.JSONLoginRequest
	if err := web.DecodeJSON(req, &body); err != nil {
		return err
	}
	id, err := ctx.Accounts.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return apiError(err)
	}
	return startSession(w, ctx, id, http.StatusOK)
}

// Register creates an account and starts a session for it.
func Register(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	var body model.JSONRegisterRequest
	if err := web.DecodeJSON(req, &body); err != nil {
		return err
	}
	id, err := ctx.Accounts.Register(req.Context(), auth.Registration{
		FullName:        body.FullName,
		StudentID:       body.StudentID,
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		Department:      body.Department,
		Role:            body.Role,
	})
	if err != nil {
		return apiError(err)
	}
	return startSession(w, ctx, id, http.StatusCreated)
}

func startSession(w http.ResponseWriter, ctx *web.Context, id auth.Identity, code int) error {
	token, err := ctx.Tokens.Issue(id)
	if err != nil {
		return err
	}
	ttl := ctx.Tokens.TTL()
	web.SetSessionCookie(w, token, int(ttl/time.Second))
	log.Info().Str("module", "rest").Str("mailbox", id.Address).Str("role", string(id.Role)).
		Msg("Session started")
	return web.RenderJSONStatus(w, code, &model.JSONSession{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl).UTC(),
		Identity:  identityJSON(id),
	})
}

// Logout clears the session cookie.
func Logout(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	web.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Me renders the identity of the caller.
func Me(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return web.RenderJSON(w, identityJSON(*ctx.Identity))
}

func identityJSON(id auth.Identity) model.JSONIdentity {
	return model.JSONIdentity{
		Address: id.Address,
		Name:    id.Name,
		Role:    string(id.Role),
		Home:    id.Home(),
	}
}
