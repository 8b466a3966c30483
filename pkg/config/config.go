package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "campusmail"
	tableFormat = `CampusMail is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Web      Web
	Mail     Mail
	Auth     Auth
	Announce Announce
	Lua      Lua
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr           string `required:"true" default:"0.0.0.0:9000" desc:"Web server host:port"`
	BasePath       string `default:"" desc:"Base path prefix for UI and API URLs"`
	UIDir          string `required:"true" default:"ui/dist" desc:"User interface dir"`
	MonitorVisible bool   `required:"true" default:"true" desc:"Allow mailbox event monitor?"`
	MonitorHistory int    `required:"true" default:"30" desc:"Monitor remembered events"`
}

// Mail contains the simulated transport configuration.
type Mail struct {
	Domain     string        `required:"true" default:"aru.ac.tz" desc:"Domain of local mailboxes"`
	SendDelay  time.Duration `required:"true" default:"1500ms" desc:"Simulated compose send latency"`
	BulkDelay  time.Duration `required:"true" default:"2500ms" desc:"Simulated bulk send latency"`
	OutboxSize int           `required:"true" default:"100" desc:"Sent messages remembered"`
	SeedInbox  bool          `required:"true" default:"true" desc:"Seed new mailboxes with samples?"`
	MailboxCap int           `required:"true" default:"500" desc:"Maximum emails per mailbox, 0 is unlimited"`
}

// Auth contains the authentication collaborator configuration.
type Auth struct {
	Admins        AdminList     `desc:"Admin accounts, address:password comma separated"`
	TokenSecret   string        `desc:"Session token signing key (text)"`
	TokenTTL      time.Duration `required:"true" default:"12h" desc:"Session token lifetime"`
	LoginDelay    time.Duration `required:"true" default:"1500ms" desc:"Simulated login latency"`
	RegisterDelay time.Duration `required:"true" default:"2s" desc:"Simulated registration latency"`
}

// Announce contains department announcement configuration.
type Announce struct {
	SubmitDelay time.Duration `required:"true" default:"1s" desc:"Simulated publish latency"`
}

// Lua contains the Lua extension host configuration.
type Lua struct {
	Path string `default:"campusmail.lua" desc:"Lua script path"`
}

// Admin is a single configured administrator account.
type Admin struct {
	Address  string
	Password string
}

// AdminList holds administrator accounts parsed from address:password pairs.
type AdminList []Admin

// Decode implements envconfig.Decoder to parse the admin list.
func (al *AdminList) Decode(value string) error {
	list := AdminList{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addr, pass, ok := strings.Cut(entry, ":")
		addr = strings.ToLower(strings.TrimSpace(addr))
		if !ok || addr == "" || pass == "" {
			return fmt.Errorf("admin entry %q is not address:password", entry)
		}
		list = append(list, Admin{Address: addr, Password: pass})
	}
	*al = list
	return nil
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	return c, err
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
