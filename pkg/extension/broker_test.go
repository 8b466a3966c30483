package extension_test

import (
	"testing"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerEmitCallsListenersInOrder(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	var calls []string
	broker.AddListener("1", func(s string) *bool {
		calls = append(calls, "1:"+s)
		return nil
	})
	broker.AddListener("2", func(s string) *bool {
		calls = append(calls, "2:"+s)
		return nil
	})

	want := "hi"
	got := broker.Emit(&want)
	assert.Nil(t, got)
	assert.Equal(t, []string{"1:hi", "2:hi"}, calls)
}

func TestBrokerEmitCapturesFirstResult(t *testing.T) {
	broker := &extension.EventBroker[struct{}, string]{}

	makeListener := func(result *string) func(struct{}) *string {
		return func(s struct{}) *string { return result }
	}
	first := "first"
	second := "second"
	broker.AddListener("0", makeListener(nil))
	broker.AddListener("1", makeListener(&first))
	broker.AddListener("2", makeListener(&second))

	got := broker.Emit(&struct{}{})
	require.NotNil(t, got)
	assert.Equal(t, first, *got)
}

func TestBrokerAddingDuplicateNameReplacesPrevious(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	var firstGot, secondGot string
	broker.AddListener("dup", func(s string) *bool {
		firstGot = s
		return nil
	})
	broker.AddListener("dup", func(s string) *bool {
		secondGot = s
		return nil
	})

	want := "hi"
	broker.Emit(&want)
	assert.Empty(t, firstGot)
	assert.Equal(t, want, secondGot)
}

func TestBrokerRemovingListener(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	var firstGot, secondGot string
	broker.AddListener("1", func(s string) *bool {
		firstGot = s
		return nil
	})
	broker.AddListener("2", func(s string) *bool {
		secondGot = s
		return nil
	})
	broker.RemoveListener("1")
	broker.RemoveListener("doesn't crash")

	want := "hi"
	broker.Emit(&want)
	assert.Empty(t, firstGot)
	assert.Equal(t, want, secondGot)
}

func TestBrokerListenerCannotMutateEvent(t *testing.T) {
	broker := &extension.EventBroker[event.OutboundMessage, event.SendVerdict]{}
	broker.AddListener("mutator", func(msg event.OutboundMessage) *event.SendVerdict {
		msg.Subject = "changed"
		return nil
	})

	msg := &event.OutboundMessage{Subject: "original"}
	broker.Emit(msg)
	assert.Equal(t, "original", msg.Subject)
}

func TestAsyncBrokerEmitCallsOneListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	events := make(chan string, 1)
	broker.AddListener("x", func(s string) {
		events <- s
	})

	want := "bacon"
	broker.Emit(&want)

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestAsyncBrokerEmitCallsMultipleListeners(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	first := broker.AsyncTestListener("first", 1)
	second := broker.AsyncTestListener("second", 1)

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.NoError(t, err)
	assert.Equal(t, want, *firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovedListenerTimesOut(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	listener := broker.AsyncTestListener("x", 2)
	broker.RemoveListener("x")

	want := "hi"
	broker.Emit(&want)

	_, err := listener()
	assert.Error(t, err)
}

func TestHostEventsUsable(t *testing.T) {
	host := extension.NewHost()
	listener := host.Events.AfterEmailDeleted.AsyncTestListener("test", 1)

	host.Events.AfterEmailDeleted.Emit(&event.EmailMetadata{Mailbox: "a@b", ID: "3"})

	got, err := listener()
	require.NoError(t, err)
	assert.Equal(t, "3", got.ID)
}
