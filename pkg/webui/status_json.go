package webui

type jsonServerConfig struct {
	Version        string         `json:"version"`
	BuildDate      string         `json:"build-date"`
	WebListener    string         `json:"web-listener"`
	MonitorVisible bool           `json:"monitor-visible"`
	MailConfig     jsonMailConfig `json:"mail-config"`
	AuthConfig     jsonAuthConfig `json:"auth-config"`
	LuaScript      string         `json:"lua-script,omitempty"`
}

type jsonMailConfig struct {
	Domain     string `json:"domain"`
	SendDelay  string `json:"send-delay"`
	BulkDelay  string `json:"bulk-delay"`
	OutboxSize int    `json:"outbox-size"`
	MailboxCap int    `json:"mailbox-cap"`
	SeedInbox  bool   `json:"seed-inbox"`
}

type jsonAuthConfig struct {
	Admins   int    `json:"admins"`
	TokenTTL string `json:"token-ttl"`
}
