package web

import (
	"errors"
	"html/template"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
)

var (
	errLoginRequired = errors.New("login required")
	errAdminRequired = errors.New("admin role required")
)

// Handler is a function type that handles an HTTP request in CampusMail.
type Handler func(http.ResponseWriter, *http.Request, *Context) error

// StatusError is a handler error reported to the client with a specific HTTP status.
type StatusError struct {
	Code   int
	Err    error
	Fields []string // Form fields at fault, if any.
}

// NewStatusError wraps err for reporting with the HTTP status code.
func NewStatusError(code int, err error, fields ...string) *StatusError {
	return &StatusError{Code: code, Err: err, Fields: fields}
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// ErrorBody is the JSON rendering of a StatusError.
type ErrorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// ServeHTTP builds the context and passes onto the real handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Create the context.
	ctx, err := NewContext(req)
	if err != nil {
		log.Error().Str("module", "web").Err(err).Msg("HTTP failed to create context")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer ctx.Close()

	// Run the handler, grab the error, and report it.
	err = h(w, req, ctx)
	if err == nil {
		return
	}
	var se *StatusError
	if errors.As(err, &se) {
		log.Debug().Str("module", "web").Str("path", req.RequestURI).Int("status", se.Code).
			Err(se.Err).Msg("Rejected request")
		if rerr := RenderJSONStatus(w, se.Code, ErrorBody{Error: se.Error(), Fields: se.Fields}); rerr != nil {
			log.Error().Str("module", "web").Str("path", req.RequestURI).Err(rerr).
				Msg("Error rendering error")
		}
		return
	}
	log.Error().Str("module", "web").Str("path", req.RequestURI).Err(err).
		Msg("Error handling request")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// RequireUser wraps h, rejecting anonymous requests.
func RequireUser(h Handler) Handler {
	return func(w http.ResponseWriter, req *http.Request, ctx *Context) error {
		if ctx.Identity == nil {
			return NewStatusError(http.StatusUnauthorized, errLoginRequired)
		}
		return h(w, req, ctx)
	}
}

// RequireAdmin wraps h, rejecting requests not made by an administrator.
func RequireAdmin(h Handler) Handler {
	return RequireUser(func(w http.ResponseWriter, req *http.Request, ctx *Context) error {
		if !ctx.Identity.IsAdmin() {
			return NewStatusError(http.StatusForbidden, errAdminRequired)
		}
		return h(w, req, ctx)
	})
}

// SetSessionCookie stores a session token in the client.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     cookiePath(),
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session token from the client.
func ClearSessionCookie(w http.ResponseWriter) {
	SetSessionCookie(w, "", -1)
}

func cookiePath() string {
	if rootConfig == nil || rootConfig.Web.BasePath == "" {
		return "/"
	}
	return prefix("/")
}

// fileHandler creates a handler that sends the named file regardless of the requested URL.
func fileHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		f, err := os.Open(name)
		if err != nil {
			log.Error().Str("module", "web").Str("path", req.RequestURI).Str("file", name).Err(err).
				Msg("Error opening file")
			http.Error(w, "Error opening file", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		d, err := f.Stat()
		if err != nil {
			log.Error().Str("module", "web").Str("path", req.RequestURI).Str("file", name).Err(err).
				Msg("Error stating file")
			http.Error(w, "Error opening file", http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, req, d.Name(), d.ModTime(), f)
	})
}

// noMatchHandler creates a handler to log requests that Gorilla mux is unable to route,
// returning specified statusCode to the client.
func noMatchHandler(statusCode int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Warn().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg(message)
		w.WriteHeader(statusCode)
	})
}

// requestLoggingWrapper returns middleware that logs and counts client requests.
func requestLoggingWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debug().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg("Request")
		requestsTotal.Add(1)
		next.ServeHTTP(w, req)
	})
}

// spaTemplateHandler creates a handler to serve the index.html template for our SPA.
func spaTemplateHandler(tmpl *template.Template, basePath string) http.Handler {
	tmplData := struct {
		BasePath string
	}{
		BasePath: basePath,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// ensure we do now allow click jacking
		w.Header().Set("X-Frame-Options", "SameOrigin")
		err := tmpl.Execute(w, tmplData)
		if err != nil {
			log.Error().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
				Str("method", req.Method).Str("path", req.RequestURI).Err(err).
				Msg("Error rendering SPA index template")
		}
	})
}
