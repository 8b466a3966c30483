package luahost

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

func makePool(t *testing.T, source string) *statePool {
	t.Helper()
	chunk, err := parse.Parse(strings.NewReader(source), "from string")
	require.NoError(t, err)
	proto, err := lua.Compile(chunk, "from string")
	require.NoError(t, err)
	return newStatePool(zerolog.Nop(), proto)
}

func TestPoolAcquireDistinct(t *testing.T) {
	pool := makePool(t, "-- empty")

	a, err := pool.acquire()
	require.NoError(t, err)
	b, err := pool.acquire()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestPoolReusesReleased(t *testing.T) {
	pool := makePool(t, "-- empty")

	a, err := pool.acquire()
	require.NoError(t, err)
	pool.release(a)
	require.Len(t, pool.idle, 1)

	b, err := pool.acquire()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Empty(t, pool.idle)
}

func TestPoolIdleIsBounded(t *testing.T) {
	pool := makePool(t, "-- empty")

	states := make([]*lua.LState, maxIdleStates+2)
	for i := range states {
		ls, err := pool.acquire()
		require.NoError(t, err)
		states[i] = ls
	}
	for _, ls := range states {
		pool.release(ls)
	}

	assert.Len(t, pool.idle, maxIdleStates)
	assert.True(t, states[len(states)-1].IsClosed(), "extra state should be closed")
}

func TestPoolReleaseDropsClosed(t *testing.T) {
	pool := makePool(t, "-- empty")

	ls, err := pool.acquire()
	require.NoError(t, err)
	ls.Close()
	pool.release(ls)
	assert.Empty(t, pool.idle)
}

func TestPoolReleaseClearsStack(t *testing.T) {
	pool := makePool(t, "-- empty")

	ls, err := pool.acquire()
	require.NoError(t, err)
	ls.Push(lua.LString("leftover"))
	ls.Push(lua.LNumber(7))
	pool.release(ls)

	assert.Equal(t, 0, ls.GetTop())
}

func TestPoolScriptErrorFailsAcquire(t *testing.T) {
	pool := makePool(t, `error("broken script")`)

	_, err := pool.acquire()
	assert.ErrorContains(t, err, "broken script")
}

func TestPoolChannelVisibleToNewStates(t *testing.T) {
	pool := makePool(t, "-- empty")

	old, err := pool.acquire()
	require.NoError(t, err)
	pool.release(old)

	ch := pool.channel("notify")
	assert.True(t, old.IsClosed(), "idle states are discarded")

	ls, err := pool.acquire()
	require.NoError(t, err)
	require.NoError(t, ls.DoString(`notify:send(true)`))
	assert.Equal(t, lua.LTrue, <-ch)
}
