// Package luahost runs user supplied Lua scripts as listeners on the extension host.
package luahost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const listenerName = "lua"

// Host of Lua extensions.
type Host struct {
	Functions []string // Functions detected in lua script.
	extHost   *extension.Host
	pool      *statePool
	logger    zerolog.Logger
}

// New constructs a new Lua Host, pre-compiling the source.  Returns nil without error when no
// script is present.
func New(conf config.Lua, extHost *extension.Host) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	logger := log.With().Str("module", "lua").Str("phase", "startup").Str("path", scriptPath).
		Logger()

	if fi, err := os.Stat(scriptPath); err != nil {
		logger.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("lua script %v is a directory", scriptPath)
	}

	logger.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(log.With().Str("module", "lua").Logger(), extHost,
		bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a new Lua Host, loading Lua source from the provided reader.
// The provided path is used in logging and error messages.
func NewFromReader(logger zerolog.Logger, extHost *extension.Host, r io.Reader, path string) (
	*Host, error) {
	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	// Build the pool and confirm LState is retrievable.
	pool := newStatePool(logger, proto)
	h := &Host{extHost: extHost, pool: pool, logger: logger}
	ls, err := pool.acquire()
	if err != nil {
		return nil, err
	}
	h.wireFunctions(ls)
	pool.release(ls)

	return h, nil
}

// CreateChannel creates a channel and places it into the named global variable
// in newly created LStates.
func (h *Host) CreateChannel(name string) chan lua.LValue {
	return h.pool.channel(name)
}

// wireFunctions registers extension listeners for each function the script defined on the
// campusmail global.
func (h *Host) wireFunctions(ls *lua.LState) {
	cm, err := getCampusMail(ls)
	if err != nil {
		h.logger.Error().Str("phase", "startup").Err(err).Msg("Failed to get campusmail global")
		return
	}

	events := h.extHost.Events
	if cm.After.EmailStored != nil {
		events.AfterEmailStored.AddListener(listenerName, h.handleEmail(afterEmailStoredFnName))
		h.Functions = append(h.Functions, afterEmailStoredFnName)
	}
	if cm.After.EmailUpdated != nil {
		events.AfterEmailUpdated.AddListener(listenerName, h.handleEmail(afterEmailUpdatedFnName))
		h.Functions = append(h.Functions, afterEmailUpdatedFnName)
	}
	if cm.After.EmailDeleted != nil {
		events.AfterEmailDeleted.AddListener(listenerName, h.handleEmail(afterEmailDeletedFnName))
		h.Functions = append(h.Functions, afterEmailDeletedFnName)
	}
	if cm.After.MessageSent != nil {
		events.AfterMessageSent.AddListener(listenerName, h.handleAfterMessageSent)
		h.Functions = append(h.Functions, afterMessageSentFnName)
	}
	if cm.After.AnnouncementPublished != nil {
		events.AfterAnnouncementPublished.AddListener(listenerName, h.handleAnnouncement)
		h.Functions = append(h.Functions, afterAnnouncementPublishedFnName)
	}
	if cm.Before.MessageSent != nil {
		events.BeforeMessageSent.AddListener(listenerName, h.handleBeforeMessageSent)
		h.Functions = append(h.Functions, beforeMessageSentFnName)
	}

	h.logger.Debug().Str("phase", "startup").Strs("functions", h.Functions).
		Msg("Wired Lua functions")
}

func (h *Host) handleEmail(fnName string) func(event.EmailMetadata) {
	return func(email event.EmailMetadata) {
		logger, ls, fn, ok := h.prepareFuncCall(fnName)
		if !ok {
			return
		}
		defer h.pool.release(ls)

		logger.Debug().Str("mailbox", email.Mailbox).Str("id", email.ID).Msg("Calling Lua function")
		if err := ls.CallByParam(
			lua.P{Fn: fn, NRet: 0, Protect: true},
			wrapEmailMetadata(ls, &email),
		); err != nil {
			logger.Error().Err(err).Msg("Failed to call Lua function")
		}
	}
}

func (h *Host) handleAfterMessageSent(msg event.OutboundMessage) {
	logger, ls, fn, ok := h.prepareFuncCall(afterMessageSentFnName)
	if !ok {
		return
	}
	defer h.pool.release(ls)

	logger.Debug().Str("id", msg.ID).Msg("Calling Lua function")
	if err := ls.CallByParam(
		lua.P{Fn: fn, NRet: 0, Protect: true},
		wrapOutboundMessage(ls, &msg),
	); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
	}
}

func (h *Host) handleAnnouncement(ann event.AnnouncementMetadata) {
	logger, ls, fn, ok := h.prepareFuncCall(afterAnnouncementPublishedFnName)
	if !ok {
		return
	}
	defer h.pool.release(ls)

	logger.Debug().Str("id", ann.ID).Msg("Calling Lua function")
	if err := ls.CallByParam(
		lua.P{Fn: fn, NRet: 0, Protect: true},
		wrapAnnouncement(ls, &ann),
	); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
	}
}

func (h *Host) handleBeforeMessageSent(msg event.OutboundMessage) *event.SendVerdict {
	logger, ls, fn, ok := h.prepareFuncCall(beforeMessageSentFnName)
	if !ok {
		return nil
	}
	defer h.pool.release(ls)

	logger.Debug().Str("id", msg.ID).Msg("Calling Lua function")
	if err := ls.CallByParam(
		lua.P{Fn: fn, NRet: 1, Protect: true},
		wrapOutboundMessage(ls, &msg),
	); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
		return nil
	}

	lval := ls.Get(1)
	ls.Pop(1)
	logger.Debug().Str("ret", lval.String()).Msg("Lua function returned")

	if lua.LVIsFalse(lval) {
		// nil (or false) defers to the next listener.
		return nil
	}
	verdict, err := unwrapSendVerdict(lval)
	if err != nil {
		logger.Error().Err(err).Msg("Bad response from Lua function")
		return nil
	}

	return verdict
}

// prepareFuncCall returns a logger, an LState, and the named campusmail function.  When ok is
// true, the caller must return the LState to the pool.
func (h *Host) prepareFuncCall(funcName string) (logger zerolog.Logger, ls *lua.LState,
	lfunc *lua.LFunction, ok bool) {
	logger = h.logger.With().Str("event", funcName).Logger()

	ls, err := h.pool.acquire()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get Lua state instance from pool")
		return logger, nil, nil, false
	}

	cm, err := getCampusMail(ls)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get campusmail global")
		h.pool.release(ls)
		return logger, nil, nil, false
	}

	lfunc = cm.function(funcName)
	if lfunc == nil {
		logger.Warn().Msg("Lua function no longer defined")
		h.pool.release(ls)
		return logger, nil, nil, false
	}

	return logger, ls, lfunc, true
}
