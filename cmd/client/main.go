// Package main implements a command line client for the CampusMail REST API
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/Veenbreeze/aru-connect-mail/pkg/rest/client"
	"github.com/google/subcommands"
)

var host = flag.String("host", "localhost", "host/IP of CampusMail server")
var port = flag.Uint("port", 9000, "HTTP port of CampusMail server")
var email = flag.String("email", "", "account email address to log in with")
var password = flag.String("password", "",
	"account password, defaults to $CAMPUSMAIL_PASSWORD")

// Allow subcommands to accept regular expressions as flags
type regexFlag struct {
	*regexp.Regexp
}

func (r *regexFlag) Defined() bool {
	return r.Regexp != nil
}

func (r *regexFlag) Set(pattern string) error {
	if pattern == "" {
		r.Regexp = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.Regexp = re
	return nil
}

func (r *regexFlag) String() string {
	if r.Regexp == nil {
		return ""
	}
	return r.Regexp.String()
}

// regexFlag must implement flag.Value
var _ flag.Value = &regexFlag{}

func main() {
	// Important top-level flags
	subcommands.ImportantFlag("host")
	subcommands.ImportantFlag("port")
	subcommands.ImportantFlag("email")

	// Setup standard helpers
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	// Setup my commands
	subcommands.Register(&listCmd{}, "")
	subcommands.Register(&matchCmd{}, "")
	subcommands.Register(&mboxCmd{}, "")
	subcommands.Register(&sendCmd{}, "")

	// Parse and execute
	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func baseURL() string {
	return "http://" + net.JoinHostPort(*host, strconv.FormatUint(uint64(*port), 10))
}

// login builds a REST client holding a session for the -email account.
func login(ctx context.Context) (*client.Client, error) {
	if *email == "" {
		return nil, fmt.Errorf("-email flag required")
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("CAMPUSMAIL_PASSWORD")
	}
	c, err := client.New(baseURL())
	if err != nil {
		return nil, err
	}
	if _, err := c.Login(ctx, *email, pass); err != nil {
		return nil, err
	}
	return c, nil
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
