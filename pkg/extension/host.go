// Package extension provides the event hooks through which CampusMail components, and Lua
// scripts, observe and influence mailbox activity.
package extension

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
)

// Host defines extension points for CampusMail.
type Host struct {
	Events *Events
}

// Events defines all the event types supported by the extension host.
//
// Before-events are processed synchronously, the first listener to respond with a non-nil value
// determines the outcome.  After-events are processed asynchronously with respect to the
// operation that caused them.
type Events struct {
	AfterEmailDeleted          AsyncEventBroker[event.EmailMetadata]
	AfterEmailStored           AsyncEventBroker[event.EmailMetadata]
	AfterEmailUpdated          AsyncEventBroker[event.EmailMetadata]
	AfterMessageSent           AsyncEventBroker[event.OutboundMessage]
	AfterAnnouncementPublished AsyncEventBroker[event.AnnouncementMetadata]
	BeforeMessageSent          EventBroker[event.OutboundMessage, event.SendVerdict]
}

// Void indicates the event emitter will ignore any value returned by listeners.
type Void struct{}

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}
