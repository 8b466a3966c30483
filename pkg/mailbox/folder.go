package mailbox

import (
	"errors"
	"fmt"
)

// ErrUnknownFolder is returned for a folder name outside the closed set.
var ErrUnknownFolder = errors.New("unknown folder")

// Folder names a view over the Email collection.
type Folder string

// The closed set of folders.
const (
	FolderInbox   Folder = "inbox"
	FolderStarred Folder = "starred"
	FolderSent    Folder = "sent"
	FolderDrafts  Folder = "drafts"
	FolderArchive Folder = "archive"
	FolderTrash   Folder = "trash"
)

// Folders lists every folder in sidebar order.
var Folders = []Folder{
	FolderInbox,
	FolderStarred,
	FolderSent,
	FolderDrafts,
	FolderArchive,
	FolderTrash,
}

// ParseFolder validates a folder name.
func ParseFolder(s string) (Folder, error) {
	for _, f := range Folders {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFolder, s)
}

// Filter returns the emails belonging to folder f, preserving their relative order.  The input
// slice is never modified.
//
// Only inbox and starred have backing data; the remaining folders are always empty.
func Filter(emails []*Email, f Folder) []*Email {
	switch f {
	case FolderInbox:
		out := make([]*Email, len(emails))
		copy(out, emails)
		return out
	case FolderStarred:
		out := make([]*Email, 0, len(emails))
		for _, e := range emails {
			if e.Starred {
				out = append(out, e)
			}
		}
		return out
	}
	return []*Email{}
}
