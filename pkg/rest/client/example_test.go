package client_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/client"
	"github.com/gorilla/mux"
)

// Example demonstrates basic usage for the CampusMail REST client.
func Example() {
	// Setup a fake CampusMail server for this example.
	baseURL, teardown := exampleSetup()
	defer teardown()

	err := func() error {
		ctx := context.Background()

		// Begin by creating a new client using the base URL of your CampusMail server, i.e.
		// `localhost:9000`.
		restClient, err := client.New(baseURL)
		if err != nil {
			return err
		}

		// Log in, the session token is kept by the client.
		session, err := restClient.Login(ctx, "jane@aru.ac.tz", "secret")
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %v\n\n", session.Identity.Name)

		// List the inbox.
		mb, err := restClient.ListMailbox(ctx, "inbox")
		if err != nil {
			return err
		}
		for _, email := range mb.Emails {
			fmt.Printf("ID: %v, Subject: %v\n", email.ID, email.Subject)
		}

		// Open the first email.
		email, err := restClient.GetEmail(ctx, mb.Emails[0].ID)
		if err != nil {
			return err
		}
		fmt.Printf("\nFrom: %v\n", email.FromAddress)
		fmt.Printf("Preview: %v\n", email.Preview)

		// Delete the second email.
		return restClient.DeleteEmail(ctx, mb.Emails[1].ID)
	}()

	if err != nil {
		log.Print(err)
	}

	// Output:
	// Logged in as Jane Doe
	//
	// ID: 1, Subject: Welcome to ARU
	// ID: 2, Subject: Library hours
	//
	// From: registrar@aru.ac.tz
	// Preview: Orientation starts Monday
}

// exampleSetup creates a fake CampusMail server to power Example() below.
func exampleSetup() (baseURL string, teardown func()) {
	router := mux.NewRouter()
	server := httptest.NewServer(router)

	router.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"token": "example-token",
			"identity": {"address": "jane@aru.ac.tz", "name": "Jane Doe", "role": "student"}
		}`))
	}).Methods("POST")

	router.HandleFunc("/api/v1/mailbox", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"folder": "inbox",
			"emails": [
				{"id": "1", "subject": "Welcome to ARU"},
				{"id": "2", "subject": "Library hours"}
			]
		}`))
	}).Methods("GET")

	router.HandleFunc("/api/v1/mailbox/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "1",
			"fromAddress": "registrar@aru.ac.tz",
			"subject": "Welcome to ARU",
			"preview": "Orientation starts Monday",
			"read": true
		}`))
	}).Methods("GET")

	router.HandleFunc("/api/v1/mailbox/2", func(w http.ResponseWriter, r *http.Request) {
		// Nop.
	}).Methods("DELETE")

	return server.URL, func() {
		server.Close()
	}
}
