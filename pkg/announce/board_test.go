package announce_test

import (
	"context"
	"testing"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() announce.Form {
	return announce.Form{
		Title:      "Graduation Ceremony",
		Content:    "Gowns are available <b>from Monday</b>.<script>alert(1)</script>",
		Department: "Dean of Students",
		Audience:   "Final Year Students",
	}
}

func TestSeedOrder(t *testing.T) {
	b := announce.NewBoard(0, nil, announce.Seed()...)

	list := b.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Semester Registration Deadline Extended", list[0].Title)
	assert.Equal(t, 2847, list[0].Views)
	assert.Equal(t, announce.StatusScheduled, list[2].Status)
	assert.Equal(t, announce.StatusDraft, list[3].Status)
}

func TestCreatePrependsAndSanitizes(t *testing.T) {
	host := extension.NewHost()
	published := host.Events.AfterAnnouncementPublished.AsyncTestListener("test", 1)
	b := announce.NewBoard(0, host, announce.Seed()...)

	got, err := b.Create(context.Background(), validForm(), announce.StatusPublished)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Gowns are available <b>from Monday</b>.", got.Content)
	assert.Zero(t, got.Views)

	list := b.List()
	require.Len(t, list, 5)
	assert.Equal(t, got, list[0])

	ev, err := published()
	require.NoError(t, err)
	assert.Equal(t, got.ID, ev.ID)
	assert.Equal(t, "Final Year Students", ev.Audience)
}

func TestDraftDoesNotPublish(t *testing.T) {
	host := extension.NewHost()
	published := host.Events.AfterAnnouncementPublished.AsyncTestListener("test", 1)
	b := announce.NewBoard(0, host)

	_, err := b.Create(context.Background(), validForm(), announce.StatusDraft)
	require.NoError(t, err)

	_, err = published()
	assert.Error(t, err, "draft should not emit a publish event")
}

func TestCreateValidation(t *testing.T) {
	b := announce.NewBoard(0, nil)

	_, err := b.Create(context.Background(), announce.Form{Title: "x", Audience: " "},
		announce.StatusDraft)
	var verr *announce.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"content", "department", "audience"}, verr.Fields)
	assert.Empty(t, b.List())
}

func TestUpdateKeepsCreationAndViews(t *testing.T) {
	b := announce.NewBoard(0, nil, announce.Seed()...)
	before, err := b.Get("1")
	require.NoError(t, err)

	got, err := b.Update(context.Background(), "1", validForm(), announce.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, "Graduation Ceremony", got.Title)
	assert.Equal(t, announce.StatusDraft, got.Status)
	assert.Equal(t, before.CreatedAt, got.CreatedAt)
	assert.Equal(t, before.Views, got.Views)

	list := b.List()
	assert.Equal(t, "1", list[0].ID, "update must not reorder")
}

func TestUpdateUnknown(t *testing.T) {
	b := announce.NewBoard(0, nil, announce.Seed()...)

	_, err := b.Update(context.Background(), "nope", validForm(), announce.StatusDraft)
	assert.ErrorIs(t, err, announce.ErrNotFound)
}

func TestDelete(t *testing.T) {
	b := announce.NewBoard(0, nil, announce.Seed()...)

	require.NoError(t, b.Delete("2"))
	assert.Len(t, b.List(), 3)
	_, err := b.Get("2")
	assert.ErrorIs(t, err, announce.ErrNotFound)
	assert.ErrorIs(t, b.Delete("2"), announce.ErrNotFound)
}

func TestSubmitCompletesAfterCancel(t *testing.T) {
	b := announce.NewBoard(10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, err := b.Create(ctx, validForm(), announce.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, announce.StatusPublished, a.Status)
	assert.Len(t, b.List(), 1)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"draft", "published", "scheduled"} {
		got, err := announce.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, announce.Status(s), got)
	}
	_, err := announce.ParseStatus("archived")
	assert.Error(t, err)
}
