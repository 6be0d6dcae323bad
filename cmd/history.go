package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/billsync"
	"github.com/etnz/billsync/journal"
	"github.com/etnz/billsync/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	limit int
	run   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "lists the recorded sync runs" }
func (*historyCmd) Usage() string {
	return `bsync history [-n <count>] [-run <id>]

Lists the most recent sync runs recorded in the journal, or the report of a
single run.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "number of runs to list, 0 for all")
	f.StringVar(&c.run, "run", "", "print the report of the run with this ID")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Journal == "" {
		fmt.Fprintln(os.Stderr, "Error: the journal is disabled in the configuration.")
		return subcommands.ExitUsageError
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer j.Close()

	limit := c.limit
	if c.run != "" {
		limit = 0
	}
	runs, err := j.Runs(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.run == "" {
		printMarkdown(renderer.HistoryMarkdown(runs))
		return subcommands.ExitSuccess
	}

	outcomes, err := j.Outcomes(ctx, c.run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	summary := &billsync.Summary{Outcomes: outcomes}
	ledger, dryRun := *ledgerFile, false
	for _, r := range runs {
		if r.ID == c.run {
			summary.Date, summary.Started, summary.Finished, summary.Saved = r.Date, r.Started, r.Finished, r.Saved
			ledger, dryRun = r.Ledger, r.DryRun
		}
	}
	printMarkdown(renderer.RenderSync(renderer.NewSyncReport(summary, ledger, dryRun)))
	return subcommands.ExitSuccess
}
