package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeEmails() *State {
	return NewState(
		&Email{ID: "1"},
		&Email{ID: "2", Starred: true},
		&Email{ID: "3"},
	)
}

func TestToggleStarIsInvolution(t *testing.T) {
	for _, id := range []string{"1", "2", "3"} {
		t.Run(id, func(t *testing.T) {
			s := threeEmails()
			before := s.Clone()

			eff := s.ToggleStar(id)
			require.True(t, eff.Changed)
			e, _ := s.Find(id)
			orig, _ := before.Find(id)
			assert.Equal(t, !orig.Starred, e.Starred)
			assert.Equal(t, e.Starred, eff.Email.Starred)

			s.ToggleStar(id)
			assert.Equal(t, before.Emails, s.Emails)
		})
	}
}

func TestToggleStarAbsentIsNoop(t *testing.T) {
	s := threeEmails()
	before := s.Clone()
	eff := Reduce(s, ToggleStar{ID: "9"})
	assert.False(t, eff.Changed)
	assert.Nil(t, eff.Email)
	assert.Equal(t, before.Emails, s.Emails)
}

func TestDeleteSelectedScenario(t *testing.T) {
	s := threeEmails()
	s.Select("2")

	eff := s.Delete("2")
	assert.True(t, eff.Changed)
	assert.True(t, eff.SelectionCleared)
	assert.Equal(t, "2", eff.Email.ID)

	assert.Equal(t, []string{"1", "3"}, ids(s.Emails))
	assert.Empty(t, s.SelectedID)
	_, ok := s.Find("2")
	assert.False(t, ok)
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestDeleteOtherKeepsSelection(t *testing.T) {
	s := threeEmails()
	s.Select("3")
	eff := s.Delete("1")
	assert.False(t, eff.SelectionCleared)
	assert.Equal(t, "3", s.SelectedID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := threeEmails()
	s.Delete("1")
	once := s.Clone()
	eff := s.Delete("1")
	assert.False(t, eff.Changed)
	assert.Equal(t, once.Emails, s.Emails)
}

func TestDeleteDoesNotDisturbFilteredViews(t *testing.T) {
	s := threeEmails()
	view := s.Visible()
	s.Delete("1")
	assert.Equal(t, []string{"1", "2", "3"}, ids(view), "earlier views are snapshots")
}

func TestReduceSequence(t *testing.T) {
	s := threeEmails()
	actions := []Action{
		ToggleStar{ID: "1"},
		Delete{ID: "2"},
		ToggleStar{ID: "2"}, // Absent by now.
		ToggleStar{ID: "3"},
	}
	for _, a := range actions {
		Reduce(s, a)
	}
	assert.Equal(t, []string{"1", "3"}, ids(s.Emails))
	s.SetFolder(FolderStarred)
	assert.Equal(t, []string{"1", "3"}, ids(s.Visible()))
}
