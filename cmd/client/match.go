package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/google/subcommands"
)

type matchCmd struct {
	folder  string
	output  string
	outFunc func(emails []*model.JSONEmail) error
	delete  bool
	// match criteria
	from    regexFlag
	subject regexFlag
	unread  bool
	starred bool
	maxAge  time.Duration
}

func (*matchCmd) Name() string {
	return "match"
}

func (*matchCmd) Synopsis() string {
	return "output emails matching criteria"
}

func (*matchCmd) Usage() string {
	return `match [flags]:
	output emails matching all specified criteria
	exit status will be 1 if no matches were found, otherwise 0
`
}

func (m *matchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&m.folder, "folder", "inbox", "folder to search: inbox, starred, sent, or trash")
	f.StringVar(&m.output, "output", "id", "output format: id or json")
	f.BoolVar(&m.delete, "delete", false, "delete matched emails after output")
	f.Var(&m.from, "from", "sender address matching regexp")
	f.Var(&m.subject, "subject", "Subject matching regexp")
	f.BoolVar(&m.unread, "unread", false, "Matches must be unread")
	f.BoolVar(&m.starred, "starred", false, "Matches must be starred")
	f.DurationVar(
		&m.maxAge, "maxage", 0,
		"Matches must have been received in this time frame (ex: \"10s\", \"5m\")")
}

func (m *matchCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	// Select output function
	switch m.output {
	case "id":
		m.outFunc = outputID
	case "json":
		m.outFunc = outputJSON
	default:
		return usage("unknown output type: " + m.output)
	}
	// Setup REST client
	c, err := login(ctx)
	if err != nil {
		return fatal("Login failed", err)
	}
	// Get list
	mb, err := c.ListMailbox(ctx, m.folder)
	if err != nil {
		return fatal("List REST call failed", err)
	}
	// Find matches
	matches := make([]*model.JSONEmail, 0, len(mb.Emails))
	for _, e := range mb.Emails {
		if m.match(e) {
			matches = append(matches, e)
		}
	}
	// Return error status if no matches
	if len(matches) == 0 {
		return subcommands.ExitFailure
	}
	// Output matches
	err = m.outFunc(matches)
	if err != nil {
		return fatal("Error", err)
	}
	if m.delete {
		// Delete matches
		for _, e := range matches {
			err = c.DeleteEmail(ctx, e.ID)
			if err != nil {
				return fatal("Delete REST call failed", err)
			}
		}
	}
	return subcommands.ExitSuccess
}

// match returns true if email matches all defined criteria
func (m *matchCmd) match(email *model.JSONEmail) bool {
	if m.maxAge > 0 {
		if time.Since(email.Date) > m.maxAge {
			return false
		}
	}
	if m.unread && email.Read {
		return false
	}
	if m.starred && !email.Starred {
		return false
	}
	if m.subject.Defined() {
		if !m.subject.MatchString(email.Subject) {
			return false
		}
	}
	if m.from.Defined() {
		if !m.from.MatchString(email.FromAddress) {
			return false
		}
	}
	return true
}

func outputID(emails []*model.JSONEmail) error {
	for _, e := range emails {
		fmt.Println(e.ID)
	}
	return nil
}

func outputJSON(emails []*model.JSONEmail) error {
	jsonEncoder := json.NewEncoder(os.Stdout)
	jsonEncoder.SetEscapeHTML(false)
	jsonEncoder.SetIndent("", "  ")
	return jsonEncoder.Encode(emails)
}
