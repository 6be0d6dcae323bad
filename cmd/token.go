package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/billsync"
	"github.com/etnz/billsync/capture"
	"github.com/google/subcommands"
)

type tokenCmd struct {
	capture string
	print   bool
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "stores the usage API bearer token found in a browser capture" }
func (*tokenCmd) Usage() string {
	return `bsync token -capture <cdp_logs.json> [-print]

Reads a Chrome performance log captured while logged in the Liberty customer
portal, extracts the first bearer token sent to the API, and stores it for the
'sync' command.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.capture, "capture", "cdp_logs.json", "path to the browser network capture (JSON)")
	f.BoolVar(&c.print, "print", false, "also print the token on stdout")
}

func (c *tokenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	token, err := capture.ReadToken(c.capture)
	switch {
	case errors.Is(err, billsync.ErrTokenNotFound):
		fmt.Fprintf(os.Stderr, "Error: no bearer token in %q, log in the portal before capturing.\n", c.capture)
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveToken(token); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.print {
		fmt.Println(token)
	}
	fmt.Fprintln(os.Stderr, "✅ Bearer token successfully stored.")
	return subcommands.ExitSuccess
}
