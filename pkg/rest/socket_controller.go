package rest

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/Veenbreeze/aru-connect-mail/pkg/msghub"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Events queued for a slow client before further events are dropped.
	listenerQueueLen = 100
)

var errMonitorDisabled = errors.New("monitor is disabled in configuration")

// options for gorilla connection upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// msgListener relays mailbox events from the msghub to a websocket.
type msgListener struct {
	hub     *msghub.Hub                  // Global message hub.
	c       chan *model.JSONMonitorEvent // Queue of incoming events.
	done    chan struct{}                // Closed once the listener is closed.
	once    sync.Once
	mailbox string
}

// newMsgListener creates a listener and registers it for events in mailbox.
func newMsgListener(hub *msghub.Hub, mailbox string) *msgListener {
	ml := &msgListener{
		hub:     hub,
		c:       make(chan *model.JSONMonitorEvent, listenerQueueLen),
		done:    make(chan struct{}),
		mailbox: mailbox,
	}
	hub.AddListener(mailbox, ml)
	return ml
}

// Receive handles a stored or updated email.
func (ml *msgListener) Receive(email event.EmailMetadata) error {
	ml.enqueue(&model.JSONMonitorEvent{
		Variant: "email-stored",
		Email:   metadataToEmail(&email),
	})
	return nil
}

// Delete handles a deleted email.
func (ml *msgListener) Delete(mailbox string, id string) error {
	ml.enqueue(&model.JSONMonitorEvent{
		Variant:    "email-deleted",
		Identifier: &model.JSONEmailID{Mailbox: mailbox, ID: id},
	})
	return nil
}

// enqueue never blocks the hub, events for a client that is not keeping up are dropped.
func (ml *msgListener) enqueue(ev *model.JSONMonitorEvent) {
	select {
	case <-ml.done:
	case ml.c <- ev:
	default:
		log.Warn().Str("module", "rest").Str("mailbox", ml.mailbox).Str("variant", ev.Variant).
			Msg("Monitor queue full, dropping event")
	}
}

// WSReader makes sure the websocket client is still connected, discards any messages from client
func (ml *msgListener) WSReader(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Logger()
	defer ml.Close()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn().Err(err).Msg("Failed to setup read deadline")
	}
	conn.SetPongHandler(func(string) error {
		slog.Debug().Msg("Got pong")
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			slog.Warn().Err(err).Msg("Failed to set read deadline in pong")
		}
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				// Unexpected close code
				slog.Warn().Err(err).Msg("Socket error")
			} else {
				slog.Debug().Msg("Closing socket")
			}
			break
		}
	}
}

// WSWriter makes sure the websocket client is still connected
func (ml *msgListener) WSWriter(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Logger()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ml.Close()
	}()

	// Handle events from hub until msgListener is closed
	for {
		select {
		case <-ml.done:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for close")
			}
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case ev := <-ml.c:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for msg")
			}
			if conn.WriteJSON(ev) != nil {
				// Write failed
				return
			}
		case <-ticker.C:
			// Send ping
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for ping")
			}
			if conn.WriteMessage(websocket.PingMessage, []byte{}) != nil {
				// Write error
				return
			}
			slog.Debug().Msg("Sent ping")
		}
	}
}

// Close removes the listener registration
func (ml *msgListener) Close() {
	ml.once.Do(func() {
		ml.hub.RemoveListener(ml)
		close(ml.done)
	})
}

// Monitor is a web handler which upgrades the connection to a websocket and notifies the client
// of events in the caller's mailbox.
func Monitor(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if !ctx.RootConfig.Web.MonitorVisible {
		return web.NewStatusError(http.StatusNotFound, errMonitorDisabled)
	}
	// Upgrade to Websocket.
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Debug().Str("module", "rest").Err(err).Msg("WebSocket upgrade failed")
		return nil
	}
	web.ExpWebSocketConnectsCurrent.Add(1)
	defer func() {
		_ = conn.Close()
		web.ExpWebSocketConnectsCurrent.Add(-1)
	}()
	log.Debug().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Str("mailbox", ctx.Identity.Address).
		Msg("Upgraded to WebSocket")
	// Create, register listener; then interact with conn.
	ml := newMsgListener(ctx.MsgHub, ctx.Identity.Address)
	go ml.WSWriter(conn)
	ml.WSReader(conn)
	return nil
}

func metadataToEmail(md *event.EmailMetadata) *model.JSONEmail {
	j := &model.JSONEmail{
		ID:      md.ID,
		Subject: md.Subject,
		Date:    md.Date,
		Read:    md.Read,
		Starred: md.Starred,
		Label:   md.Label,
	}
	if md.From != nil {
		j.From = md.From.Name
		j.FromAddress = md.From.Address
		if j.From == "" {
			j.From = md.From.Address
		}
	}
	j.Initial = stringutil.Initial(j.From)
	return j
}
