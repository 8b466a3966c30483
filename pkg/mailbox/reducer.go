package mailbox

// Action is a mailbox mutation.  The set of actions is closed: ToggleStar and Delete.
type Action interface {
	// TargetID is the ID of the email the action applies to.
	TargetID() string
	action()
}

// ToggleStar flips the starred flag of an email.
type ToggleStar struct {
	ID string
}

// Delete removes an email from the mailbox.
type Delete struct {
	ID string
}

// TargetID implements Action.
func (a ToggleStar) TargetID() string { return a.ID }

// TargetID implements Action.
func (a Delete) TargetID() string { return a.ID }

func (ToggleStar) action() {}
func (Delete) action()     {}

// Effect describes what a reduced Action changed.
type Effect struct {
	Changed          bool
	Email            *Email // Copy of the affected email after the change; nil if unchanged.
	SelectionCleared bool
}

// Reduce applies a to s.  Actions targeting an absent ID leave s untouched; Reduce never fails.
//
// Deleting the selected email clears the selection in the same step.
func Reduce(s *State, a Action) Effect {
	i := s.index(a.TargetID())
	if i < 0 {
		return Effect{}
	}
	switch a := a.(type) {
	case ToggleStar:
		e := s.Emails[i]
		e.Starred = !e.Starred
		return Effect{Changed: true, Email: e.clone()}
	case Delete:
		e := s.Emails[i]
		s.Emails = append(s.Emails[:i:i], s.Emails[i+1:]...)
		eff := Effect{Changed: true, Email: e.clone()}
		if s.SelectedID == a.ID {
			s.SelectedID = ""
			eff.SelectionCleared = true
		}
		return eff
	}
	return Effect{}
}
