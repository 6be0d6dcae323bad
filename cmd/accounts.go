package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/billsync"
	"github.com/etnz/billsync/renderer"
	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "lists the accounts found in the ledger" }
func (*accountsCmd) Usage() string {
	return `bsync accounts

Lists the account numbers found in the ledger building names, with the
building name, square footage and template row used by 'sync'.
`
}

func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (*accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := OpenLedger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer ledger.Close()

	rows, err := ledger.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	billsync.AssignAccounts(rows, cfg.Pattern())
	dir := billsync.NewDirectory(rows)

	printMarkdown(renderer.AccountsMarkdown(*ledgerFile, dir.Profiles()))
	return subcommands.ExitSuccess
}
