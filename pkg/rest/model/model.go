// Package model holds the JSON documents exchanged by the CampusMail REST API and its client.
package model

import (
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/directory"
)

// JSONIdentity describes the caller of a request.
type JSONIdentity struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Home    string `json:"home"`
}

// JSONLoginRequest carries login credentials.
type JSONLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// JSONRegisterRequest carries the registration form.
type JSONRegisterRequest struct {
	FullName        string `json:"fullName"`
	StudentID       string `json:"studentId"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Department      string `json:"department"`
	Role            string `json:"role"`
}

// JSONSession is returned after login, the token may be presented as a Bearer credential.
type JSONSession struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Identity  JSONIdentity `json:"identity"`
}

// JSONCounts summarizes a mailbox.
type JSONCounts struct {
	Total   int `json:"total"`
	Unread  int `json:"unread"`
	Starred int `json:"starred"`
}

// JSONEmail is a single email in a mailbox listing.
type JSONEmail struct {
	ID            string    `json:"id"`
	From          string    `json:"from"`
	FromAddress   string    `json:"fromAddress,omitempty"`
	Initial       string    `json:"initial"`
	Subject       string    `json:"subject"`
	Preview       string    `json:"preview"`
	PreviewHTML   string    `json:"previewHtml,omitempty"`
	Date          time.Time `json:"date"`
	Read          bool      `json:"read"`
	Starred       bool      `json:"starred"`
	HasAttachment bool      `json:"hasAttachment"`
	Label         string    `json:"label,omitempty"`
}

// JSONMailbox is the visible list of a mailbox folder.
type JSONMailbox struct {
	Folder     string       `json:"folder"`
	Folders    []string     `json:"folders"`
	Emails     []*JSONEmail `json:"emails"`
	Counts     JSONCounts   `json:"counts"`
	SelectedID string       `json:"selectedId,omitempty"`
}

// JSONSentMessage is an entry of the outbox.
type JSONSentMessage struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	CC         []string  `json:"cc,omitempty"`
	BCC        []string  `json:"bcc,omitempty"`
	Subject    string    `json:"subject"`
	Recipients int       `json:"recipients"`
	Date       time.Time `json:"date"`
	Size       int64     `json:"size"`
	ReplyTo    string    `json:"replyTo,omitempty"`
}

// JSONBulk is the state of the bulk email form.
type JSONBulk struct {
	Catalog bulk.Catalog `json:"catalog"`
	Form    bulk.Form    `json:"form"`
	History []bulk.Entry `json:"history"`
}

// JSONBulkContent sets the bulk email subject and body.
type JSONBulkContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// JSONAnnouncementRequest creates or updates an announcement.
type JSONAnnouncementRequest struct {
	announce.Form
	Status string `json:"status"`
}

// JSONUsers is the admin user management listing.
type JSONUsers struct {
	Users    []directory.User `json:"users"`
	Stats    directory.Stats  `json:"stats"`
	Selected []string         `json:"selected"`
}

// JSONUserSelection toggles users in the admin selection.  An empty ID toggles every listed
// user.
type JSONUserSelection struct {
	ID string `json:"id"`
}

// JSONEmailID identifies an email within a mailbox.
type JSONEmailID struct {
	Mailbox string `json:"mailbox"`
	ID      string `json:"id"`
}

// JSONMonitorEvent is sent over the monitor websocket.
type JSONMonitorEvent struct {
	Variant    string       `json:"variant"`
	Email      *JSONEmail   `json:"email,omitempty"`
	Identifier *JSONEmailID `json:"identifier,omitempty"`
}

// JSONError is the body of a rejected request.
type JSONError struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}
