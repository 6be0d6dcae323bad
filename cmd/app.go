// Package cmd implements the bsync CLI application.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/etnz/billsync/workbook"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands() {
		c.Register(cmd, "")
	}
}

// Commands returns the bsync subcommands.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&tokenCmd{},
		&syncCmd{},
		&accountsCmd{},
		&historyCmd{},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.xlsx", "Path to the utility ledger workbook (.xlsx or .xlsm)")
var configFile = flag.String("config", "bsync.yaml", "Path to the YAML configuration file")
var verbose = flag.Bool("v", false, "Log debug messages")
var rawMarkdown = flag.Bool("md", false, "Print reports as raw markdown")

// Init configures logging from the global flags. It must be called after flag.Parse.
func Init() {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// OpenLedger opens the ledger workbook.
func OpenLedger(cfg *Config) (*workbook.Workbook, error) {
	return workbook.Open(*ledgerFile, cfg.Sheet)
}

// printMarkdown prints a markdown report on stdout, styled for the terminal
// unless raw markdown was requested.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Debug("cannot style markdown", "err", err)
		out = md
	}
	fmt.Print(out)
}
