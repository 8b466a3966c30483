// Package client provides a basic REST client for CampusMail
package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
)

// Client accesses the CampusMail REST API v1
type Client struct {
	restClient
}

// New creates a new v1 REST API client given the base URL of a CampusMail server, ex:
// "http://localhost:9000"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Transport: options.transport,
				Timeout:   options.timeout,
			},
			baseURL: parsedURL,
			token:   options.token,
		},
	}
	return c, nil
}

// Token returns the session token presented with each request.
func (c *Client) Token() string {
	return c.token
}

// Login starts a session, later requests are made as the logged in user.
func (c *Client) Login(ctx context.Context, email, password string) (*model.JSONSession, error) {
	var session model.JSONSession
	err := c.doJSON(ctx, "POST", "/api/v1/login",
		&model.JSONLoginRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, r *model.JSONRegisterRequest) (
	*model.JSONSession, error) {
	var session model.JSONSession
	if err := c.doJSON(ctx, "POST", "/api/v1/register", r, &session); err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Me returns the identity of the logged in user.
func (c *Client) Me(ctx context.Context) (*model.JSONIdentity, error) {
	var id model.JSONIdentity
	if err := c.doJSON(ctx, "GET", "/api/v1/me", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ListMailbox returns the emails visible in folder, an empty folder keeps the active folder.
func (c *Client) ListMailbox(ctx context.Context, folder string) (*model.JSONMailbox, error) {
	uri := "/api/v1/mailbox"
	if folder != "" {
		uri += "?folder=" + url.QueryEscape(folder)
	}
	var mb model.JSONMailbox
	if err := c.doJSON(ctx, "GET", uri, nil, &mb); err != nil {
		return nil, err
	}
	return &mb, nil
}

// GetEmail opens an email, marking it read.
func (c *Client) GetEmail(ctx context.Context, id string) (*model.JSONEmail, error) {
	var email model.JSONEmail
	if err := c.doJSON(ctx, "GET", "/api/v1/mailbox/"+url.PathEscape(id), nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// ToggleStar flips the starred flag of an email.
func (c *Client) ToggleStar(ctx context.Context, id string) (*model.JSONEmail, error) {
	var email model.JSONEmail
	err := c.doJSON(ctx, "PATCH", "/api/v1/mailbox/"+url.PathEscape(id)+"/star", nil, &email)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// DeleteEmail deletes a single email.
func (c *Client) DeleteEmail(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/mailbox/"+url.PathEscape(id), nil, nil)
}

// PurgeMailbox deletes every email in the mailbox.
func (c *Client) PurgeMailbox(ctx context.Context) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/mailbox", nil, nil)
}

// Send opens the compose window, fills in the draft and submits it.
func (c *Client) Send(ctx context.Context, d compose.Draft) (*compose.Snapshot, error) {
	if err := c.doJSON(ctx, "POST", "/api/v1/compose", nil, nil); err != nil {
		return nil, err
	}
	if err := c.doJSON(ctx, "PATCH", "/api/v1/compose", &d, nil); err != nil {
		return nil, err
	}
	var snap compose.Snapshot
	if err := c.doJSON(ctx, "POST", "/api/v1/compose/send", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Reply opens the compose window pre-filled to answer an email.
func (c *Client) Reply(ctx context.Context, id string) (*compose.Snapshot, error) {
	var snap compose.Snapshot
	err := c.doJSON(ctx, "POST", "/api/v1/compose/reply/"+url.PathEscape(id), nil, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Outbox returns the messages sent by the logged in user, oldest first.
func (c *Client) Outbox(ctx context.Context) ([]*model.JSONSentMessage, error) {
	var sent []*model.JSONSentMessage
	if err := c.doJSON(ctx, "GET", "/api/v1/outbox", nil, &sent); err != nil {
		return nil, err
	}
	return sent, nil
}

// GetSentSource returns the MIME source of a sent message.
func (c *Client) GetSentSource(ctx context.Context, id string) (*bytes.Buffer, error) {
	resp, err := c.do(ctx, "GET", "/api/v1/outbox/"+url.PathEscape(id)+"/source", nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	return buf, err
}

// SendBulk selects recipient groups and departments, sets the content, and sends a bulk email.
// Requires an admin session.
func (c *Client) SendBulk(ctx context.Context, groups, departments []string, subject,
	body string) (*bulk.Entry, error) {
	for _, id := range groups {
		if err := c.doJSON(ctx, "POST", "/api/v1/admin/bulk/groups/"+url.PathEscape(id), nil,
			nil); err != nil {
			return nil, err
		}
	}
	for _, id := range departments {
		if err := c.doJSON(ctx, "POST", "/api/v1/admin/bulk/departments/"+url.PathEscape(id),
			nil, nil); err != nil {
			return nil, err
		}
	}
	err := c.doJSON(ctx, "POST", "/api/v1/admin/bulk",
		&model.JSONBulkContent{Subject: subject, Body: body}, nil)
	if err != nil {
		return nil, err
	}
	var entry bulk.Entry
	if err := c.doJSON(ctx, "POST", "/api/v1/admin/bulk/send", nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Announcements lists department announcements, newest first.  Requires an admin session.
func (c *Client) Announcements(ctx context.Context) ([]announce.Announcement, error) {
	var list []announce.Announcement
	if err := c.doJSON(ctx, "GET", "/api/v1/admin/announcements", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Users lists the user directory filtered by query and role.  Requires an admin session.
func (c *Client) Users(ctx context.Context, query, role string) (*model.JSONUsers, error) {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if role != "" {
		v.Set("role", role)
	}
	uri := "/api/v1/admin/users"
	if len(v) > 0 {
		uri += "?" + v.Encode()
	}
	var users model.JSONUsers
	if err := c.doJSON(ctx, "GET", uri, nil, &users); err != nil {
		return nil, err
	}
	return &users, nil
}
