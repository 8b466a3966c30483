// Package webui serves the CampusMail single page application and its status document.
package webui

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/gorilla/mux"
)

// Client side routes, each served the SPA index.
var spaPaths = []string{"/", "/login", "/register", "/dashboard", "/admin", "/profile",
	"/settings", "/help"}

// SetupRoutes populates routes for the webui into the provided Router.
func SetupRoutes(r *mux.Router) {
	r.Path("/status").Handler(
		web.Handler(RootStatus)).Name("RootStatus").Methods("GET")
	r.Path("/favicon.png").Handler(web.FaviconHandler()).Methods("GET")
	r.PathPrefix("/static/").Handler(web.UIFileHandler())
	for _, p := range spaPaths {
		r.Path(p).Handler(web.SPAHandler()).Methods("GET")
	}
}
