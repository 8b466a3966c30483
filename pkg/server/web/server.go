// Package web provides the plumbing for CampusMail's web UI and RESTful API.
package web

import (
	"context"
	"errors"
	"expvar"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
	"github.com/Veenbreeze/aru-connect-mail/pkg/message"
	"github.com/Veenbreeze/aru-connect-mail/pkg/metric"
	"github.com/Veenbreeze/aru-connect-mail/pkg/msghub"
	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Served when the UI directory holds no index.html.
const fallbackIndex = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <base href="{{.BasePath}}/">
  <title>ARU Connect Mail</title>
</head>
<body>
  <div id="app">CampusMail API is running, see {{.BasePath}}/status</div>
</body>
</html>
`

var (
	// Router is shared between the webui and rest packages.  It sends incoming requests to the
	// correct handler function.
	Router = mux.NewRouter()

	services   = &Services{}
	rootConfig *config.Root
	prefix     = stringutil.MakePathPrefixer("")

	expHTTP       = expvar.NewMap("http")
	requestsTotal = metric.NewCounter(expHTTP, "Requests")

	// ExpWebSocketConnectsCurrent tracks the number of open WebSockets.
	ExpWebSocketConnectsCurrent = new(expvar.Int)
)

func init() {
	expHTTP.Set("WebSocketConnectsCurrent", ExpWebSocketConnectsCurrent)
}

// Services are the collaborators made available to request handlers through Context.
type Services struct {
	MsgHub        *msghub.Hub
	Manager       message.Manager
	Accounts      *auth.Directory
	Tokens        *auth.Tokens
	Board         *announce.Board
	Users         []directory.User
	UserSelection *directory.Selection
}

// Server defines an instance of the web server.
type Server struct {
	addr string
	http *http.Server
}

// Initialize publishes conf and svc to the request handlers.  It is called by NewServer, and
// directly by tests which drive Router without a listener.
func Initialize(conf *config.Root, svc *Services) {
	rootConfig = conf
	services = svc
	prefix = stringutil.MakePathPrefixer(conf.Web.BasePath)
}

// NewServer sets up things for unit tests or the Start() method.
func NewServer(conf *config.Root, svc *Services) *Server {
	Initialize(conf, svc)

	Router.Path(prefix("/debug/vars")).Handler(expvar.Handler())

	Router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	Router.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")

	return &Server{
		addr: conf.Web.Addr,
		http: &http.Server{
			Addr:         conf.Web.Addr,
			Handler:      requestLoggingWrapper(Router),
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// SPAHandler serves the single page application index for any client side route.
func SPAHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		spaHandler().ServeHTTP(w, req)
	})
}

// spaHandler loads the index template on each request so UI rebuilds are picked up.
func spaHandler() http.Handler {
	basePath := prefix("")
	indexPath := ""
	if rootConfig != nil {
		indexPath = filepath.Join(rootConfig.Web.UIDir, "index.html")
	}
	if indexPath != "" {
		if _, err := os.Stat(indexPath); err == nil {
			tmpl, err := template.ParseFiles(indexPath)
			if err == nil {
				return spaTemplateHandler(tmpl, basePath)
			}
			log.Error().Str("module", "web").Str("path", indexPath).Err(err).
				Msg("Failed to parse UI index template")
		}
	}
	return spaTemplateHandler(template.Must(template.New("index").Parse(fallbackIndex)), basePath)
}

// UIFileHandler serves static assets from the configured UI directory.
func UIFileHandler() http.Handler {
	dir := "."
	if rootConfig != nil {
		dir = rootConfig.Web.UIDir
	}
	return http.StripPrefix(prefix(""), http.FileServer(http.Dir(dir)))
}

// FaviconHandler serves favicon.png from the UI directory.
func FaviconHandler() http.Handler {
	dir := "."
	if rootConfig != nil {
		dir = rootConfig.Web.UIDir
	}
	return fileHandler(filepath.Join(dir, "favicon.png"))
}

// Start begins listening for HTTP requests, blocking until ctx is canceled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", s.addr).Logger()

	// We don't use ListenAndServe because it lacks a way to close the listener.
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP4 listener")
		return err
	}
	slog.Info().Msg("HTTP listening on tcp4")

	serveErr := make(chan error, 1)
	go func() {
		// Serve blocks until Shutdown closes the listener.
		serveErr <- s.http.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		log.Error().Str("module", "web").Str("phase", "runtime").Err(err).Msg("HTTP server failed")
		return err
	case <-ctx.Done():
	}

	log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down on request")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(sctx); err != nil {
		log.Error().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("HTTP server shutdown failed")
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
