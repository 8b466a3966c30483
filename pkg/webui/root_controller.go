package webui

import (
	"net/http"

	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
)

// RootStatus serves the CampusMail configuration summary.  Secrets are never included.
func RootStatus(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	root := ctx.RootConfig
	return web.RenderJSON(w,
		&jsonServerConfig{
			Version:        config.Version,
			BuildDate:      config.BuildDate,
			WebListener:    root.Web.Addr,
			MonitorVisible: root.Web.MonitorVisible,
			MailConfig: jsonMailConfig{
				Domain:     root.Mail.Domain,
				SendDelay:  root.Mail.SendDelay.String(),
				BulkDelay:  root.Mail.BulkDelay.String(),
				OutboxSize: root.Mail.OutboxSize,
				MailboxCap: root.Mail.MailboxCap,
				SeedInbox:  root.Mail.SeedInbox,
			},
			AuthConfig: jsonAuthConfig{
				Admins:   len(root.Auth.Admins),
				TokenTTL: root.Auth.TokenTTL.String(),
			},
			LuaScript: root.Lua.Path,
		})
}
