package msghub

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testListener implements the Listener interface, mock for unit tests
type testListener struct {
	sync.Mutex
	emails     []*event.EmailMetadata // received emails
	deletes    []string               // received deletes
	wantEvents int                    // how many events this listener wants to receive
	errorAfter int                    // when != 0, event count until Receive() begins returning error
	gotEvents  int

	done     chan struct{} // closed once we have received wantEvents
	overflow chan struct{} // closed if we receive wantEvents+1
}

func newTestListener(want int) *testListener {
	l := &testListener{
		emails:     make([]*event.EmailMetadata, 0, want*2),
		deletes:    make([]string, 0, want*2),
		wantEvents: want,
		done:       make(chan struct{}),
		overflow:   make(chan struct{}),
	}
	if want == 0 {
		close(l.done)
	}
	return l
}

func (l *testListener) count() error {
	l.gotEvents++
	if l.gotEvents == l.wantEvents {
		close(l.done)
	}
	if l.gotEvents == l.wantEvents+1 {
		close(l.overflow)
	}
	if l.errorAfter > 0 && l.gotEvents > l.errorAfter {
		return errors.New("too many events")
	}
	return nil
}

// Receive an email, store it in the emails slice, close applicable channels, and return an error
// if instructed
func (l *testListener) Receive(email event.EmailMetadata) error {
	l.Lock()
	defer l.Unlock()
	l.emails = append(l.emails, &email)
	return l.count()
}

func (l *testListener) Delete(mailbox string, id string) error {
	l.Lock()
	defer l.Unlock()
	l.deletes = append(l.deletes, mailbox+"/"+id)
	return l.count()
}

// String formats the got vs wanted event counts
func (l *testListener) String() string {
	return fmt.Sprintf("got %v events, wanted %v", l.gotEvents, l.wantEvents)
}

func (l *testListener) wait(t *testing.T) {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("Timeout:", l)
	}
}

func (l *testListener) assertNoOverflow(t *testing.T) {
	t.Helper()
	select {
	case <-l.overflow:
		t.Error(l)
	case <-time.After(50 * time.Millisecond):
		// Expected result, no overflow
	}
}

func startHub(t *testing.T, historyLen int) (*Hub, *extension.Host) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	extHost := extension.NewHost()
	hub := New(historyLen, extHost)
	go hub.Start(ctx)
	return hub, extHost
}

func TestHubNew(t *testing.T) {
	hub := New(5, extension.NewHost())
	require.NotNil(t, hub)
}

func TestHubZeroLen(t *testing.T) {
	hub, _ := startHub(t, 0)
	l := newTestListener(0)
	hub.AddListener(AllMailboxes, l)
	for i := 0; i < 100; i++ {
		hub.Dispatch(event.EmailMetadata{})
	}
	hub.Update(event.EmailMetadata{})
	hub.Delete("a", "1")
	hub.Sync()
	// A zero length hub relays nothing.
	l.assertNoOverflow(t)
}

func TestHubZeroListeners(t *testing.T) {
	hub, _ := startHub(t, 5)
	for i := 0; i < 100; i++ {
		hub.Dispatch(event.EmailMetadata{})
	}
	hub.Sync()
	// Ensures Hub doesn't panic
}

func TestHubOneListener(t *testing.T) {
	hub, _ := startHub(t, 5)
	l := newTestListener(1)

	hub.AddListener(AllMailboxes, l)
	hub.Dispatch(event.EmailMetadata{})

	l.wait(t)
}

func TestHubMailboxFilter(t *testing.T) {
	hub, _ := startHub(t, 5)
	student := newTestListener(1)
	lecturer := newTestListener(2)
	hub.AddListener("student@aru.ac.tz", student)
	hub.AddListener("lecturer@aru.ac.tz", lecturer)

	hub.Dispatch(event.EmailMetadata{Mailbox: "lecturer@aru.ac.tz", ID: "1"})
	hub.Dispatch(event.EmailMetadata{Mailbox: "student@aru.ac.tz", ID: "1"})
	hub.Delete("lecturer@aru.ac.tz", "1")
	hub.Sync()

	student.wait(t)
	lecturer.wait(t)
	student.assertNoOverflow(t)
	assert.Equal(t, "student@aru.ac.tz", student.emails[0].Mailbox)
	assert.Equal(t, []string{"lecturer@aru.ac.tz/1"}, lecturer.deletes)
}

func TestHubRemoveListener(t *testing.T) {
	hub, _ := startHub(t, 5)
	l := newTestListener(1)

	hub.AddListener(AllMailboxes, l)
	hub.Dispatch(event.EmailMetadata{})
	hub.RemoveListener(l)
	hub.Dispatch(event.EmailMetadata{})
	hub.Sync()

	l.assertNoOverflow(t)
}

func TestHubRemoveListenerOnError(t *testing.T) {
	hub, _ := startHub(t, 5)

	// error after 1 means listener should receive 2 events before being removed
	l := newTestListener(2)
	l.errorAfter = 1

	hub.AddListener(AllMailboxes, l)
	for i := 0; i < 4; i++ {
		hub.Dispatch(event.EmailMetadata{})
	}
	hub.Sync()

	l.assertNoOverflow(t)
}

func TestHubHistoryReplay(t *testing.T) {
	hub, _ := startHub(t, 100)
	l1 := newTestListener(3)
	hub.AddListener(AllMailboxes, l1)

	emails := make([]event.EmailMetadata, 3)
	for i := range emails {
		emails[i] = event.EmailMetadata{Subject: fmt.Sprintf("subj %v", i)}
		hub.Dispatch(emails[i])
	}
	l1.wait(t)

	// Add a new listener, receives history.
	l2 := newTestListener(3)
	hub.AddListener(AllMailboxes, l2)
	l2.wait(t)

	for i := range emails {
		assert.Equal(t, emails[i].Subject, l2.emails[i].Subject, "emails[%d]", i)
	}
}

func TestHubHistoryUpdate(t *testing.T) {
	hub, _ := startHub(t, 10)
	for i := 0; i < 3; i++ {
		hub.Dispatch(event.EmailMetadata{Mailbox: "hub", ID: strconv.Itoa(i)})
	}
	hub.Update(event.EmailMetadata{Mailbox: "hub", ID: "1", Starred: true})
	hub.Update(event.EmailMetadata{Mailbox: "other", ID: "2", Starred: true})

	l := newTestListener(3)
	hub.AddListener(AllMailboxes, l)
	l.wait(t)
	l.assertNoOverflow(t)

	starred := []bool{l.emails[0].Starred, l.emails[1].Starred, l.emails[2].Starred}
	assert.Equal(t, []bool{false, true, false}, starred)
}

func TestHubHistoryDelete(t *testing.T) {
	hub, _ := startHub(t, 100)
	l1 := newTestListener(3)
	hub.AddListener(AllMailboxes, l1)

	emails := make([]event.EmailMetadata, 3)
	for i := range emails {
		emails[i] = event.EmailMetadata{
			Mailbox: "hub",
			ID:      strconv.Itoa(i),
			Subject: fmt.Sprintf("subj %v", i),
		}
		hub.Dispatch(emails[i])
	}
	l1.wait(t)

	hub.Delete("hub", "1") // Delete an email
	hub.Delete("zzz", "0") // Attempt to delete non-existent mailbox email

	l2 := newTestListener(2)
	hub.AddListener(AllMailboxes, l2)
	l2.wait(t)

	want := []string{"subj 0", "subj 2"}
	for i := range want {
		assert.Equal(t, want[i], l2.emails[i].Subject)
	}
}

func TestHubHistoryReplayWrap(t *testing.T) {
	hub, _ := startHub(t, 5)
	l1 := newTestListener(20)
	hub.AddListener(AllMailboxes, l1)

	// Broadcast more events than the hub can hold
	emails := make([]event.EmailMetadata, 20)
	for i := range emails {
		emails[i] = event.EmailMetadata{Subject: fmt.Sprintf("subj %v", i)}
		hub.Dispatch(emails[i])
	}
	l1.wait(t)

	l2 := newTestListener(5)
	hub.AddListener(AllMailboxes, l2)
	l2.wait(t)

	for i := 0; i < 5; i++ {
		assert.Equal(t, emails[i+15].Subject, l2.emails[i].Subject)
	}
}

func TestHubHistoryReplayWrapAfterDelete(t *testing.T) {
	bufferSize := 5
	hub, _ := startHub(t, bufferSize)

	waitFor := func(n int) {
		l := newTestListener(n)
		hub.AddListener(AllMailboxes, l)
		l.wait(t)
	}

	for i := 0; i < 10; i++ {
		hub.Dispatch(event.EmailMetadata{Mailbox: "first", ID: strconv.Itoa(i)})
	}
	waitFor(bufferSize)
	require.Equal(t, bufferSize, hub.history.Len())

	// Delete an email still present in buffer.
	hub.Delete("first", "7")

	for i := 0; i < 10; i++ {
		hub.Dispatch(event.EmailMetadata{Mailbox: "second", ID: strconv.Itoa(i)})
	}
	waitFor(bufferSize)

	assert.Equal(t, bufferSize, hub.history.Len(), "buffer must not shrink after delete")
}

func TestHubExtensionEvents(t *testing.T) {
	hub, extHost := startHub(t, 5)
	l := newTestListener(3)
	hub.AddListener("mb", l)

	extHost.Events.AfterEmailStored.Emit(&event.EmailMetadata{Mailbox: "mb", ID: "1"})
	require.Eventually(t, func() bool {
		hub.Sync()
		l.Lock()
		defer l.Unlock()
		return len(l.emails) == 1
	}, time.Second, 10*time.Millisecond)

	extHost.Events.AfterEmailUpdated.Emit(&event.EmailMetadata{Mailbox: "mb", ID: "1", Read: true})
	require.Eventually(t, func() bool {
		hub.Sync()
		l.Lock()
		defer l.Unlock()
		return len(l.emails) == 2
	}, time.Second, 10*time.Millisecond)

	extHost.Events.AfterEmailDeleted.Emit(&event.EmailMetadata{Mailbox: "mb", ID: "1"})
	l.wait(t)

	assert.True(t, l.emails[1].Read)
	assert.Equal(t, []string{"mb/1"}, l.deletes)
}

func TestHubContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := New(5, extension.NewHost())
	go hub.Start(ctx)
	l := newTestListener(1)

	hub.AddListener(AllMailboxes, l)
	hub.Dispatch(event.EmailMetadata{})
	hub.Sync()
	cancel()

	// Operations after shutdown must not block.
	require.Eventually(t, func() bool {
		for i := 0; i < opChanLen+1; i++ {
			hub.Dispatch(event.EmailMetadata{})
		}
		hub.Sync()
		return true
	}, time.Second, 10*time.Millisecond)

	l.assertNoOverflow(t)
}
