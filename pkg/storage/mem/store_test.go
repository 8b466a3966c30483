package mem

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailboxIsSeeded(t *testing.T) {
	s := New(config.Mail{SeedInbox: true}, extension.NewHost())

	var ids []string
	s.View("jane@aru.ac.tz", func(st *mailbox.State) {
		for _, e := range st.Emails {
			ids = append(ids, e.ID)
		}
	})
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.NotNil(t, s.ComposeFor("jane@aru.ac.tz"))
}

func TestMailboxesAreIndependent(t *testing.T) {
	s := New(config.Mail{SeedInbox: true}, extension.NewHost())

	s.Update("a@aru.ac.tz", func(st *mailbox.State) { st.Delete("1") })

	var a, b int
	s.View("a@aru.ac.tz", func(st *mailbox.State) { a = len(st.Emails) })
	s.View("b@aru.ac.tz", func(st *mailbox.State) { b = len(st.Emails) })
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
	assert.NotSame(t, s.ComposeFor("a@aru.ac.tz"), s.ComposeFor("b@aru.ac.tz"))
}

func TestDeliverEmitsStored(t *testing.T) {
	host := extension.NewHost()
	stored := host.Events.AfterEmailStored.AsyncTestListener("test", 1)
	s := New(config.Mail{SeedInbox: true}, host)

	id := s.Deliver("jane@aru.ac.tz", &mailbox.Email{From: "Registry", Subject: "Hello"})
	assert.Equal(t, "4", id, "IDs continue after the seed")

	got, err := stored()
	require.NoError(t, err)
	assert.Equal(t, "jane@aru.ac.tz", got.Mailbox)
	assert.Equal(t, "4", got.ID)
	assert.Equal(t, "Hello", got.Subject)
}

func TestDeliverEnforcesCap(t *testing.T) {
	host := extension.NewHost()
	deleted := host.Events.AfterEmailDeleted.AsyncTestListener("test", 2)
	s := New(config.Mail{SeedInbox: true, MailboxCap: 3}, host)

	s.Deliver("jane@aru.ac.tz", &mailbox.Email{Subject: "four"})
	s.Deliver("jane@aru.ac.tz", &mailbox.Email{Subject: "five"})

	var ids []string
	s.View("jane@aru.ac.tz", func(st *mailbox.State) {
		for _, e := range st.Emails {
			ids = append(ids, e.ID)
		}
	})
	assert.Equal(t, []string{"3", "4", "5"}, ids)

	gone := map[string]bool{}
	for range 2 {
		got, err := deleted()
		require.NoError(t, err)
		gone[got.ID] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true}, gone)
}

func TestPurge(t *testing.T) {
	host := extension.NewHost()
	deleted := host.Events.AfterEmailDeleted.AsyncTestListener("test", 3)
	s := New(config.Mail{SeedInbox: true}, host)

	require.NoError(t, s.Purge("jane@aru.ac.tz"))

	var n int
	s.View("jane@aru.ac.tz", func(st *mailbox.State) { n = len(st.Emails) })
	assert.Zero(t, n)
	for range 3 {
		_, err := deleted()
		require.NoError(t, err)
	}
}

func TestPurgeDoesNotReuseIDs(t *testing.T) {
	s := New(config.Mail{SeedInbox: true}, extension.NewHost())

	require.NoError(t, s.Purge("jane@aru.ac.tz"))
	id := s.Deliver("jane@aru.ac.tz", &mailbox.Email{Subject: "after purge"})
	assert.Equal(t, "4", id)

	var got []string
	s.View("jane@aru.ac.tz", func(st *mailbox.State) {
		for _, e := range st.Emails {
			got = append(got, e.ID)
		}
	})
	assert.Equal(t, []string{"4"}, got)
}

func TestVisitMailboxes(t *testing.T) {
	s := New(config.Mail{}, extension.NewHost())
	for _, name := range []string{"c@x", "a@x", "b@x"} {
		s.Deliver(name, &mailbox.Email{Subject: name})
	}

	var names []string
	err := s.VisitMailboxes(func(name string, st *mailbox.State) bool {
		names = append(names, name)
		st.Emails = nil // Copies may be modified.
		return name != "b@x"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x", "b@x"}, names)

	var n int
	s.View("a@x", func(st *mailbox.State) { n = len(st.Emails) })
	assert.Equal(t, 1, n)
}

// TestConcurrentDelivery delivers to and purges several mailboxes at once, checking for races
// and deadlocks.
func TestConcurrentDelivery(t *testing.T) {
	s := New(config.Mail{MailboxCap: 5}, extension.NewHost())
	boxes := []string{"alpha", "beta", "whiskey", "tango", "foxtrot"}

	wg := &sync.WaitGroup{}
	for _, name := range boxes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 10 {
				s.Deliver(name, &mailbox.Email{Subject: fmt.Sprint(i)})
			}
		}()
	}
	wg.Wait()

	total := 0
	_ = s.VisitMailboxes(func(_ string, st *mailbox.State) bool {
		total += len(st.Emails)
		return true
	})
	assert.Equal(t, 25, total)

	for _, name := range boxes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Purge(name))
		}()
	}
	wg.Wait()

	total = 0
	_ = s.VisitMailboxes(func(_ string, st *mailbox.State) bool {
		total += len(st.Emails)
		return true
	})
	assert.Zero(t, total)
}
