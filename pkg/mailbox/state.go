package mailbox

import "strconv"

// State is the mailbox aggregate: the ordered email collection plus the view state over it.
// State is not safe for concurrent use; the owner must serialize access.
type State struct {
	Emails       []*Email
	ActiveFolder Folder
	SelectedID   string // Lookup key into Emails, empty when nothing is selected.
	lastID       int    // Highest numeric ID issued, IDs are never reused.
}

// Counts holds the sidebar badge numbers for a mailbox.
type Counts struct {
	Total   int
	Unread  int
	Starred int
}

// NewState creates a State in the inbox folder holding copies of the seed emails.  Seed emails
// with an empty or duplicate ID are assigned a fresh ID.
func NewState(seed ...*Email) *State {
	s := &State{
		Emails:       make([]*Email, 0, len(seed)),
		ActiveFolder: FolderInbox,
	}
	// Reserve numeric seed IDs first so generated IDs never collide with them.
	for _, e := range seed {
		s.reserveID(e.ID)
	}
	seen := make(map[string]struct{}, len(seed))
	for _, e := range seed {
		c := e.clone()
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			c.ID = s.nextID()
		}
		seen[c.ID] = struct{}{}
		s.Emails = append(s.Emails, c)
	}
	return s
}

// Add appends an email, assigning it a new ID which is returned.
func (s *State) Add(e *Email) string {
	c := e.clone()
	c.ID = s.nextID()
	s.Emails = append(s.Emails, c)
	return c.ID
}

// Find looks up an email by ID.
func (s *State) Find(id string) (*Email, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.Emails[i], true
}

// Visible returns the emails in the active folder.
func (s *State) Visible() []*Email {
	return Filter(s.Emails, s.ActiveFolder)
}

// SetFolder changes the active folder.
func (s *State) SetFolder(f Folder) {
	s.ActiveFolder = f
}

// Select opens the email with the provided ID in the reading pane and marks it read.  Returns
// false, leaving the state untouched, if the ID is unknown.
func (s *State) Select(id string) bool {
	e, ok := s.Find(id)
	if !ok {
		return false
	}
	s.SelectedID = id
	e.Read = true
	return true
}

// ClearSelection closes the reading pane.
func (s *State) ClearSelection() {
	s.SelectedID = ""
}

// Selected resolves the selection against the current collection.  A selection that no longer
// resolves is reported as no selection.
func (s *State) Selected() (*Email, bool) {
	if s.SelectedID == "" {
		return nil, false
	}
	return s.Find(s.SelectedID)
}

// ToggleStar flips the starred flag of the email with the provided ID.
func (s *State) ToggleStar(id string) Effect {
	return Reduce(s, ToggleStar{ID: id})
}

// Delete removes the email with the provided ID.
func (s *State) Delete(id string) Effect {
	return Reduce(s, Delete{ID: id})
}

// Purge removes every email and clears the selection, returning the removed emails.  The ID
// sequence is kept, so purged IDs are never issued again.
func (s *State) Purge() []*Email {
	removed := s.Emails
	s.Emails = nil
	s.SelectedID = ""
	return removed
}

// Counts returns the badge counts for the mailbox.
func (s *State) Counts() Counts {
	c := Counts{Total: len(s.Emails)}
	for _, e := range s.Emails {
		if !e.Read {
			c.Unread++
		}
		if e.Starred {
			c.Starred++
		}
	}
	return c
}

// Clone returns a deep copy of the state, safe to hand to a renderer.
func (s *State) Clone() *State {
	c := &State{
		Emails:       make([]*Email, len(s.Emails)),
		ActiveFolder: s.ActiveFolder,
		SelectedID:   s.SelectedID,
		lastID:       s.lastID,
	}
	for i, e := range s.Emails {
		c.Emails[i] = e.clone()
	}
	return c
}

func (s *State) index(id string) int {
	for i, e := range s.Emails {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) nextID() string {
	s.lastID++
	return strconv.Itoa(s.lastID)
}

func (s *State) reserveID(id string) {
	if n, err := strconv.Atoi(id); err == nil && n > s.lastID {
		s.lastID = n
	}
}
