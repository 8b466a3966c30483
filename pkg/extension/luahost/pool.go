package luahost

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/metric"
	"github.com/cjoudrey/gluahttp"
	"github.com/cosmotek/loguago"
	json "github.com/inbucket/gopher-json"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

const (
	// Idle interpreters kept for reuse, extras are closed when returned.
	maxIdleStates = 8

	// Bounds requests made by scripts through the http module.
	scriptHTTPTimeout = 10 * time.Second
)

var (
	expLua        = expvar.NewMap("lua")
	statesCreated = metric.NewCounter(expLua, "StatesCreated")
)

// statePool hands out interpreters that have already run the compiled script.  LStates are not
// safe for concurrent use, so each event handler checks one out for the length of the call.
type statePool struct {
	mu       sync.Mutex
	script   *lua.FunctionProto
	idle     []*lua.LState
	channels map[string]chan lua.LValue // Exposed as globals of the same name.
	logger   zerolog.Logger
	http     *http.Client
}

func newStatePool(logger zerolog.Logger, script *lua.FunctionProto) *statePool {
	return &statePool{
		script:   script,
		channels: make(map[string]chan lua.LValue),
		logger:   logger,
		http:     &http.Client{Timeout: scriptHTTPTimeout},
	}
}

// build creates an interpreter and runs the script in it. Lock must be held.
func (p *statePool) build() (*lua.LState, error) {
	ls := lua.NewState()
	ls.PreloadModule("http", gluahttp.NewHttpModule(p.http).Loader)
	ls.PreloadModule("json", json.Loader)
	ls.PreloadModule("logger", loguago.NewLogger(p.logger).Loader)
	for name, ch := range p.channels {
		ls.SetGlobal(name, lua.LChannel(ch))
	}
	registerTypes(ls)

	ls.Push(ls.NewFunctionFromProto(p.script))
	if err := ls.PCall(0, lua.MultRet, nil); err != nil {
		ls.Close()
		return nil, err
	}
	statesCreated.Add(1)
	return ls, nil
}

// registerTypes installs every CampusMail binding into ls.
func registerTypes(ls *lua.LState) {
	registerAddressType(ls)
	registerAnnouncementType(ls)
	registerCampusMailTypes(ls)
	registerEmailMetadataType(ls)
	registerOutboundMessageType(ls)
	registerSendVerdictType(ls)
}

// acquire checks out an idle interpreter, building one when none is free.
func (p *statePool) acquire() (*lua.LState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.idle)
	if n == 0 {
		return p.build()
	}
	ls := p.idle[n-1]
	p.idle = p.idle[:n-1]
	return ls, nil
}

// release returns ls for reuse.  Closed interpreters are dropped.
func (p *statePool) release(ls *lua.LState) {
	if ls.IsClosed() {
		return
	}
	ls.SetTop(0)

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) >= maxIdleStates {
		ls.Close()
		return
	}
	p.idle = append(p.idle, ls)
}

// channel registers a buffered channel as a script global.  Idle interpreters are discarded so
// the next acquire sees it; interpreters already checked out keep running without it.
func (p *statePool) channel(name string) chan lua.LValue {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan lua.LValue, 10)
	p.channels[name] = ch
	for _, ls := range p.idle {
		ls.Close()
	}
	p.idle = p.idle[:0]
	return ch
}
