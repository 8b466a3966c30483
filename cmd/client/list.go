package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string {
	return "list"
}

func (*listCmd) Synopsis() string {
	return "list contents of a mailbox folder"
}

func (*listCmd) Usage() string {
	return `list [folder]:
	list email IDs and subjects in folder, defaults to the inbox
`
}

func (l *listCmd) SetFlags(f *flag.FlagSet) {}

func (l *listCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	folder := f.Arg(0)
	if folder == "" {
		folder = "inbox"
	}

	// Setup rest client
	c, err := login(ctx)
	if err != nil {
		return fatal("Login failed", err)
	}

	// Get list
	mb, err := c.ListMailbox(ctx, folder)
	if err != nil {
		return fatal("REST call failed", err)
	}
	for _, e := range mb.Emails {
		flags := ""
		if !e.Read {
			flags += "U"
		}
		if e.Starred {
			flags += "*"
		}
		fmt.Printf("%s\t%-2s\t%s\t%s\n", e.ID, flags, e.FromAddress, e.Subject)
	}

	return subcommands.ExitSuccess
}
