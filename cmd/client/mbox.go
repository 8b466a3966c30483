package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/client"
	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/model"
	"github.com/google/subcommands"
)

type mboxCmd struct{}

func (*mboxCmd) Name() string {
	return "mbox"
}

func (*mboxCmd) Synopsis() string {
	return "output sent messages in mbox format"
}

func (*mboxCmd) Usage() string {
	return `mbox:
	output the MIME source of every sent message in mbox format
`
}

func (m *mboxCmd) SetFlags(f *flag.FlagSet) {}

func (m *mboxCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	// Setup REST client
	c, err := login(ctx)
	if err != nil {
		return fatal("Login failed", err)
	}

	// Get list
	sent, err := c.Outbox(ctx)
	if err != nil {
		return fatal("Outbox REST call failed", err)
	}
	w := bufio.NewWriter(os.Stdout)
	if err := outputMbox(ctx, c, sent, w); err != nil {
		return fatal("Error", err)
	}
	if err := w.Flush(); err != nil {
		return fatal("Error", err)
	}

	return subcommands.ExitSuccess
}

// outputMbox renders messages in mboxrd format.
func outputMbox(ctx context.Context, c *client.Client, sent []*model.JSONSentMessage,
	w *bufio.Writer) error {
	for _, s := range sent {
		source, err := c.GetSentSource(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("get source REST failed: %v", err)
		}

		from := s.From
		if addr, err := mail.ParseAddress(from); err == nil {
			from = addr.Address
		}
		fmt.Fprintf(w, "From %s %s\n", from, s.Date.UTC().Format("Mon Jan _2 15:04:05 2006"))
		scanner := bufio.NewScanner(bytes.NewReader(source.Bytes()))
		for scanner.Scan() {
			line := strings.TrimSuffix(scanner.Text(), "\r")
			if strings.HasPrefix(strings.TrimLeft(line, ">"), "From ") {
				line = ">" + line
			}
			fmt.Fprintln(w, line)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
