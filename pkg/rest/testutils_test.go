package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/message"
	"github.com/Veenbreeze/aru-connect-mail/pkg/msghub"
	"github.com/Veenbreeze/aru-connect-mail/pkg/outbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/Veenbreeze/aru-connect-mail/pkg/storage/mem"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin    = "admin@aru.ac.tz"
	testPassword = "letmein"
	testStudent  = "jane@aru.ac.tz"
)

// testEnv holds the services behind web.Router, and session tokens for a student and an admin.
type testEnv struct {
	manager      *message.StoreManager
	extHost      *extension.Host
	hub          *msghub.Hub
	board        *announce.Board
	studentToken string
	adminToken   string
}

func testRestGet(url, token string) (*httptest.ResponseRecorder, error) {
	return testRestDo("GET", url, token, "")
}

func testRestPost(url, token, body string) (*httptest.ResponseRecorder, error) {
	return testRestDo("POST", url, token, body)
}

func testRestDo(method, url, token, body string) (*httptest.ResponseRecorder, error) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	if token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w, nil
}

func setupWebServer(t *testing.T) *testEnv {
	t.Helper()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: io.Discard})

	cfg := &config.Root{
		Web: config.Web{
			UIDir:          "../ui",
			MonitorVisible: true,
			MonitorHistory: 10,
		},
		Mail: config.Mail{Domain: "aru.ac.tz", SeedInbox: true, OutboxSize: 10},
		Auth: config.Auth{
			Admins:   config.AdminList{{Address: testAdmin, Password: testPassword}},
			TokenTTL: time.Hour,
		},
	}
	extHost := extension.NewHost()
	addressing := &policy.Addressing{Domain: cfg.Mail.Domain}
	hub := msghub.New(cfg.Web.MonitorHistory, extHost)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Start(ctx)

	manager := &message.StoreManager{
		AddrPolicy: addressing,
		Store:      mem.New(cfg.Mail, extHost),
		Transport: &outbox.Simulator{
			Addressing: addressing,
			Outbox:     outbox.New(cfg.Mail.OutboxSize),
			Host:       extHost,
		},
		ExtHost:     extHost,
		BulkCatalog: bulk.DefaultCatalog(),
		BulkHistory: bulk.NewHistory(10),
	}
	accounts, err := auth.NewDirectory(cfg.Auth, addressing)
	require.NoError(t, err)
	tokens, err := auth.NewTokens("test-secret", cfg.Auth.TokenTTL)
	require.NoError(t, err)
	board := announce.NewBoard(0, extHost, announce.Seed()...)

	SetupRoutes(web.Router.PathPrefix("/api/").Subrouter())
	web.NewServer(cfg, &web.Services{
		MsgHub:        hub,
		Manager:       manager,
		Accounts:      accounts,
		Tokens:        tokens,
		Board:         board,
		Users:         directory.Seed(time.Now()),
		UserSelection: &directory.Selection{},
	})

	admin, _ := accounts.Lookup(testAdmin)
	adminToken, err := tokens.Issue(admin)
	require.NoError(t, err)
	studentToken, err := tokens.Issue(auth.Identity{
		Address: testStudent,
		Name:    "Jane Doe",
		Role:    auth.RoleStudent,
	})
	require.NoError(t, err)

	return &testEnv{
		manager:      manager,
		extHost:      extHost,
		hub:          hub,
		board:        board,
		studentToken: studentToken,
		adminToken:   adminToken,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var result any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result), "body %q", w.Body.String())
	return result
}

func decodedBoolEquals(t *testing.T, json any, path string, want bool) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(bool); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

func decodedNumberEquals(t *testing.T, json any, path string, want float64) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	got, ok := val.(float64)
	if ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T) %v (int64),\nwant: %v / %v",
		path, val, val, int64(got), want, int64(want))
}

func decodedStringEquals(t *testing.T, json any, path string, want string) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(string); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

// getDecodedPath recursively navigates the specified path, returing the requested element.  If
// something goes wrong, the returned string will contain an explanation.
//
// Named path elements require the parent element to be a map[string]any, numbers in square
// brackets require the parent element to be a []any.
//
//	getDecodedPath(o, "users", "[1]", "name")
//
// is equivalent to the JavaScript:
//
//	o.users[1].name
func getDecodedPath(o any, path ...string) (any, string) {
	if len(path) == 0 {
		return o, ""
	}
	if o == nil {
		return nil, " is nil"
	}
	key := path[0]
	present := false
	var val any
	if key[0] == '[' {
		// Expecting slice.
		index, err := strconv.Atoi(strings.Trim(key, "[]"))
		if err != nil {
			return nil, "/" + key + " is not a slice index"
		}
		oslice, ok := o.([]any)
		if !ok {
			return nil, " is not a slice"
		}
		if index >= len(oslice) {
			return nil, "/" + key + " is out of bounds"
		}
		val, present = oslice[index], true
	} else {
		// Expecting map.
		omap, ok := o.(map[string]any)
		if !ok {
			return nil, " is not a map"
		}
		val, present = omap[key]
	}
	if !present {
		return nil, "/" + key + " is missing"
	}
	result, msg := getDecodedPath(val, path[1:]...)
	if msg != "" {
		return nil, "/" + key + msg
	}
	return result, ""
}
