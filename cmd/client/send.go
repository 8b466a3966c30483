package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/google/subcommands"
)

type sendCmd struct {
	draft compose.Draft
}

func (*sendCmd) Name() string {
	return "send"
}

func (*sendCmd) Synopsis() string {
	return "compose and send an email"
}

func (*sendCmd) Usage() string {
	return `send [flags]:
	send an email, the body is read from stdin when -body is not given
`
}

func (s *sendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.draft.To, "to", "", "comma separated recipients")
	f.StringVar(&s.draft.CC, "cc", "", "comma separated CC recipients")
	f.StringVar(&s.draft.BCC, "bcc", "", "comma separated BCC recipients")
	f.StringVar(&s.draft.Subject, "subject", "", "message subject")
	f.StringVar(&s.draft.Body, "body", "", "message body")
}

func (s *sendCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if s.draft.To == "" {
		return usage("-to required")
	}
	if s.draft.Body == "" {
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fatal("Reading body failed", err)
		}
		s.draft.Body = string(body)
	}

	// Setup REST client
	c, err := login(ctx)
	if err != nil {
		return fatal("Login failed", err)
	}

	snap, err := c.Send(ctx, s.draft)
	if err != nil {
		return fatal("Send REST call failed", err)
	}
	fmt.Println(snap.Status)

	return subcommands.ExitSuccess
}
