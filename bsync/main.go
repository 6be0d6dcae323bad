// Command bsync synchronizes a utility bill ledger with the Liberty usage API.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/billsync/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "bsync")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell for completion
	cmd.Completion(flag.CommandLine).Complete("bsync")

	flag.Parse()
	cmd.Init()
	os.Exit(int(commander.Execute(context.Background())))
}
