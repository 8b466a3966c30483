// Package test holds helpers shared by CampusMail package tests.
package test

import (
	"strings"
	"testing"
	"time"

	"github.com/cosmotek/loguago"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// NotifyTimeout bounds how long AssertNotified waits on a script.
const NotifyTimeout = 2 * time.Second

// LuaInit is the prelude run in every test LState.  Scripts exercised from inside an event
// listener set `async = true`; failed assertions then clear `test_ok` and log instead of
// raising, and the listener reports `test_ok` through a channel.
const LuaInit = `
	local logger = require("logger")

	async = false
	test_ok = true

	local function fail(message)
		if async then
			logger.error(message, {from = "lua test"})
			test_ok = false
		else
			error(message, 3)
		end
	end

	function assert_true(value, message)
		if not value then
			fail(message or "expected a true value")
		end
	end

	-- Compares plain values, or list tables element by element.
	function assert_eq(got, want)
		if type(got) == "table" and type(want) == "table" then
			if #got ~= #want then
				fail(string.format("got %d elements, wanted %d", #got, #want))
				return
			end
			for i = 1, #want do
				assert_eq(got[i], want[i])
			end
			return
		end
		if got ~= want then
			fail(string.format("got %q, wanted %q", tostring(got), tostring(want)))
		end
	end

	function assert_contains(got, want)
		if not string.find(got, want, 1, true) then
			fail(string.format("got %q, wanted it to contain %q", got, want))
		end
	end
`

// NewLuaState returns an LState with the logger module and LuaInit loaded, after applying each
// setup func.  The builder collects the script's log output.
func NewLuaState(setup ...func(*lua.LState)) (*lua.LState, *strings.Builder) {
	output := &strings.Builder{}
	ls := lua.NewState()
	ls.PreloadModule("logger", loguago.NewLogger(zerolog.New(output)).Loader)
	for _, f := range setup {
		f(ls)
	}
	if err := ls.DoString(LuaInit); err != nil {
		panic(err)
	}
	return ls, output
}

// AssertNotified requires a truthy LValue on the notify channel within NotifyTimeout.
func AssertNotified(t *testing.T, notify chan lua.LValue) {
	t.Helper()
	select {
	case got := <-notify:
		if lua.LVIsFalse(got) {
			t.Error("Lua responded with false, wanted true")
		}
	case <-time.After(NotifyTimeout):
		t.Fatal("Lua did not respond to event within timeout")
	}
}
