package web

import (
	"net/http"
	"strings"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
	"github.com/Veenbreeze/aru-connect-mail/pkg/message"
	"github.com/Veenbreeze/aru-connect-mail/pkg/msghub"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// SessionCookie holds the session token issued at login.
const SessionCookie = "campusmail_session"

// Context is passed into every request handler function.
type Context struct {
	Vars          map[string]string
	MsgHub        *msghub.Hub
	Manager       message.Manager
	Accounts      *auth.Directory
	Tokens        *auth.Tokens
	Board         *announce.Board
	Users         []directory.User
	UserSelection *directory.Selection
	RootConfig    *config.Root
	Identity      *auth.Identity // Nil for anonymous requests.
	IsJSON        bool
}

// Close the Context (currently does nothing)
func (c *Context) Close() {
	// Do nothing
}

// headerMatch returns true if the request header specified by name contains
// the specified value.  Case is ignored.
func headerMatch(req *http.Request, name string, value string) bool {
	name = http.CanonicalHeaderKey(name)
	value = strings.ToLower(value)

	if header := req.Header[name]; header != nil {
		for _, hv := range header {
			if value == strings.ToLower(hv) {
				return true
			}
		}
	}

	return false
}

// sessionToken returns the bearer token, falling back to the session cookie.
func sessionToken(req *http.Request) string {
	if token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c, err := req.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// NewContext returns a Context for the given HTTP Request.
func NewContext(req *http.Request) (*Context, error) {
	vars := mux.Vars(req)
	ctx := &Context{
		Vars:          vars,
		MsgHub:        services.MsgHub,
		Manager:       services.Manager,
		Accounts:      services.Accounts,
		Tokens:        services.Tokens,
		Board:         services.Board,
		Users:         services.Users,
		UserSelection: services.UserSelection,
		RootConfig:    rootConfig,
		IsJSON:        headerMatch(req, "Accept", "application/json"),
	}
	if token := sessionToken(req); token != "" && ctx.Tokens != nil {
		id, err := ctx.Tokens.Parse(token)
		if err != nil {
			log.Debug().Str("module", "web").Str("remote", req.RemoteAddr).Err(err).
				Msg("Ignoring session token")
		} else {
			ctx.Identity = &id
		}
	}
	return ctx, nil
}
