// Package server wires the CampusMail services together and runs them.
package server

import (
	"context"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/luahost"
	"github.com/Veenbreeze/aru-connect-mail/pkg/message"
	"github.com/Veenbreeze/aru-connect-mail/pkg/msghub"
	"github.com/Veenbreeze/aru-connect-mail/pkg/outbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/Veenbreeze/aru-connect-mail/pkg/storage/mem"
	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
	"github.com/Veenbreeze/aru-connect-mail/pkg/webui"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Bulk sends remembered for the admin history.
const bulkHistoryLen = 20

// Services holds the configured services, ready to Start.
type Services struct {
	ExtHost   *extension.Host
	LuaHost   *luahost.Host // Nil when no script is loaded.
	MsgHub    *msghub.Hub
	Manager   *message.StoreManager
	Accounts  *auth.Directory
	Tokens    *auth.Tokens
	Board     *announce.Board
	WebServer *web.Server
}

// FullAssembly wires up a complete CampusMail environment with the provided extension host.
func FullAssembly(conf *config.Root, extHost *extension.Host) (*Services, error) {
	addressing := &policy.Addressing{Domain: conf.Mail.Domain}
	msgHub := msghub.New(conf.Web.MonitorHistory, extHost)
	manager := &message.StoreManager{
		AddrPolicy: addressing,
		Store:      mem.New(conf.Mail, extHost),
		Transport: &outbox.Simulator{
			ComposeDelay: conf.Mail.SendDelay,
			BulkDelay:    conf.Mail.BulkDelay,
			Addressing:   addressing,
			Outbox:       outbox.New(conf.Mail.OutboxSize),
			Host:         extHost,
		},
		ExtHost:     extHost,
		BulkCatalog: bulk.DefaultCatalog(),
		BulkHistory: bulk.NewHistory(bulkHistoryLen),
	}

	accounts, err := auth.NewDirectory(conf.Auth, addressing)
	if err != nil {
		return nil, err
	}
	if conf.Auth.TokenSecret == "" {
		log.Warn().Str("module", "auth").Str("phase", "startup").
			Msg("No token secret configured, sessions will not survive a restart")
	}
	tokens, err := auth.NewTokens(conf.Auth.TokenSecret, conf.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	board := announce.NewBoard(conf.Announce.SubmitDelay, extHost, announce.Seed()...)

	// Configure routes; the API is registered first so the UI never shadows it.
	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	rest.SetupRoutes(web.Router.PathPrefix(prefix("/api/")).Subrouter())
	webui.SetupRoutes(web.Router.PathPrefix(prefix("/")).Subrouter())
	webServer := web.NewServer(conf, &web.Services{
		MsgHub:        msgHub,
		Manager:       manager,
		Accounts:      accounts,
		Tokens:        tokens,
		Board:         board,
		Users:         directory.Seed(time.Now()),
		UserSelection: &directory.Selection{},
	})

	return &Services{
		ExtHost:   extHost,
		MsgHub:    msgHub,
		Manager:   manager,
		Accounts:  accounts,
		Tokens:    tokens,
		Board:     board,
		WebServer: webServer,
	}, nil
}

// Prod wires up the production CampusMail environment, including the Lua extension host.
func Prod(conf *config.Root) (*Services, error) {
	extHost := extension.NewHost()
	luaHost, err := luahost.New(conf.Lua, extHost)
	if err != nil {
		return nil, err
	}
	svcs, err := FullAssembly(conf, extHost)
	if err != nil {
		return nil, err
	}
	svcs.LuaHost = luaHost
	return svcs, nil
}

// Start runs the message hub and the web server, blocking until ctx is canceled or either of them
// fails.
func (s *Services) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.MsgHub.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return s.WebServer.Start(gctx)
	})
	return g.Wait()
}
