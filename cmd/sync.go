package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
	"github.com/etnz/billsync/journal"
	"github.com/etnz/billsync/renderer"
	"github.com/google/subcommands"
)

// accountFlags collects repeated -a flags, each one possibly a comma separated list.
type accountFlags []string

func (a *accountFlags) String() string {
	return strings.Join(*a, ",")
}

func (a *accountFlags) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*a = append(*a, v)
		}
	}
	return nil
}

type syncCmd struct {
	date     string
	token    string
	dryRun   bool
	accounts accountFlags
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "appends the usage readings of a day to the ledger" }
func (*syncCmd) Usage() string {
	return `bsync sync [-d <date>] [-token <token>] [-a <account>] [-dry-run]

For every account found in the ledger, fetches the usage reading of the day
from the Liberty usage API and appends it to the ledger, unless a row for that
account and reading date already exists. New rows copy the formatting of the
first ledger row of the account.

The bearer token is taken from -token, then from $BSYNC_TOKEN, then from the
session stored by 'bsync token'.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "date of the readings, e.g. 2025-03-13 or -1d")
	f.StringVar(&c.token, "token", "", "usage API bearer token")
	f.BoolVar(&c.dryRun, "dry-run", false, "fetch and report without saving the ledger")
	f.Var(&c.accounts, "a", "account to sync instead of the ledger accounts (can be repeated)")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := billsync.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid date: %v\n", err)
		return subcommands.ExitUsageError
	}
	token, err := resolveToken(c.token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if token == "" {
		fmt.Fprintf(os.Stderr, "Error: no bearer token, run 'bsync token' first or set $%s.\n", tokenEnv)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	client, err := cfg.Client()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := OpenLedger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	engine := billsync.NewEngine(client)
	engine.Delay = cfg.Delay
	engine.AccountPattern = cfg.Pattern()

	accounts := []string(c.accounts)
	if len(accounts) == 0 {
		accounts = cfg.Accounts
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	summary, runErr := engine.Sync(ctx, billsync.Run{
		Token:    token,
		Date:     on,
		Store:    ledger, // closed by Sync
		Accounts: accounts,
		DryRun:   c.dryRun,
	})

	if cfg.Journal != "" {
		record(cfg.Journal, summary, c.dryRun, runErr)
	}
	printMarkdown(renderer.RenderSync(renderer.NewSyncReport(summary, *ledgerFile, c.dryRun)))

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// record adds the run to the journal. Journal failures do not fail the run.
func record(path string, summary *billsync.Summary, dryRun bool, runErr error) {
	j, err := journal.Open(path)
	if err != nil {
		log.Warn("cannot open journal", "err", err)
		return
	}
	defer j.Close()
	// the run context may be canceled already
	id, err := j.Record(context.Background(), *ledgerFile, summary, dryRun, runErr)
	if err != nil {
		log.Warn("cannot record run", "err", err)
		return
	}
	log.Debug("run recorded", "id", id)
}
