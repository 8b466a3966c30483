// Package rest serves the CampusMail JSON API.
package rest

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/gorilla/mux"
)

// SetupRoutes populates the routes for the REST interface
func SetupRoutes(r *mux.Router) {
	user, admin := web.RequireUser, web.RequireAdmin

	// Session.
	r.Path("/v1/login").Handler(
		web.Handler(Login)).Name("Login").Methods("POST")
	r.Path("/v1/register").Handler(
		web.Handler(Register)).Name("Register").Methods("POST")
	r.Path("/v1/logout").Handler(
		web.Handler(Logout)).Name("Logout").Methods("POST")
	r.Path("/v1/me").Handler(
		user(Me)).Name("Me").Methods("GET")

	// Mailbox.
	r.Path("/v1/mailbox").Handler(
		user(MailboxList)).Name("MailboxList").Methods("GET")
	r.Path("/v1/mailbox").Handler(
		user(MailboxPurge)).Name("MailboxPurge").Methods("DELETE")
	r.Path("/v1/mailbox/{id}").Handler(
		user(MailboxShow)).Name("MailboxShow").Methods("GET")
	r.Path("/v1/mailbox/{id}").Handler(
		user(MailboxDelete)).Name("MailboxDelete").Methods("DELETE")
	r.Path("/v1/mailbox/{id}/star").Handler(
		user(MailboxToggleStar)).Name("MailboxToggleStar").Methods("PATCH")
	r.Path("/v1/selection").Handler(
		user(SelectionShow)).Name("SelectionShow").Methods("GET")
	r.Path("/v1/selection").Handler(
		user(SelectionClear)).Name("SelectionClear").Methods("DELETE")
	r.Path("/v1/outbox").Handler(
		user(OutboxList)).Name("OutboxList").Methods("GET")
	r.Path("/v1/outbox/{id}/source").Handler(
		user(OutboxSource)).Name("OutboxSource").Methods("GET")
	r.Path("/v1/monitor").Handler(
		user(Monitor)).Name("Monitor").Methods("GET")

	// Compose.
	r.Path("/v1/compose").Handler(
		user(ComposeShow)).Name("ComposeShow").Methods("GET")
	r.Path("/v1/compose").Handler(
		user(ComposeOpen)).Name("ComposeOpen").Methods("POST")
	r.Path("/v1/compose").Handler(
		user(ComposeUpdate)).Name("ComposeUpdate").Methods("PATCH")
	r.Path("/v1/compose").Handler(
		user(ComposeClose)).Name("ComposeClose").Methods("DELETE")
	r.Path("/v1/compose/reply/{id}").Handler(
		user(ComposeReply)).Name("ComposeReply").Methods("POST")
	r.Path("/v1/compose/minimize").Handler(
		user(ComposeMinimize)).Name("ComposeMinimize").Methods("POST")
	r.Path("/v1/compose/fullscreen").Handler(
		user(ComposeFullscreen)).Name("ComposeFullscreen").Methods("POST")
	r.Path("/v1/compose/maximize").Handler(
		user(ComposeMaximize)).Name("ComposeMaximize").Methods("POST")
	r.Path("/v1/compose/send").Handler(
		user(ComposeSend)).Name("ComposeSend").Methods("POST")

	// Admin dashboard.
	r.Path("/v1/admin/bulk").Handler(
		admin(BulkShow)).Name("BulkShow").Methods("GET")
	r.Path("/v1/admin/bulk").Handler(
		admin(BulkContent)).Name("BulkContent").Methods("POST")
	r.Path("/v1/admin/bulk/groups/{id}").Handler(
		admin(BulkToggleGroup)).Name("BulkToggleGroup").Methods("POST")
	r.Path("/v1/admin/bulk/departments/{id}").Handler(
		admin(BulkToggleDepartment)).Name("BulkToggleDepartment").Methods("POST")
	r.Path("/v1/admin/bulk/send").Handler(
		admin(BulkSend)).Name("BulkSend").Methods("POST")
	r.Path("/v1/admin/announcements").Handler(
		admin(AnnouncementList)).Name("AnnouncementList").Methods("GET")
	r.Path("/v1/admin/announcements").Handler(
		admin(AnnouncementCreate)).Name("AnnouncementCreate").Methods("POST")
	r.Path("/v1/admin/announcements/{id}").Handler(
		admin(AnnouncementShow)).Name("AnnouncementShow").Methods("GET")
	r.Path("/v1/admin/announcements/{id}").Handler(
		admin(AnnouncementUpdate)).Name("AnnouncementUpdate").Methods("PUT")
	r.Path("/v1/admin/announcements/{id}").Handler(
		admin(AnnouncementDelete)).Name("AnnouncementDelete").Methods("DELETE")
	r.Path("/v1/admin/users").Handler(
		admin(UserList)).Name("UserList").Methods("GET")
	r.Path("/v1/admin/users/selection").Handler(
		admin(UserSelect)).Name("UserSelect").Methods("POST")
}
