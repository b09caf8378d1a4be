package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/joeandaverde/tinyquery/cmd/tinyquery/command"
)

func main() {
	args := os.Args[1:]

	commands := map[string]cli.CommandFactory{
		"query": func() (cli.Command, error) {
			return &command.QueryCommand{}, nil
		},
		"repl": func() (cli.Command, error) {
			return &command.ReplCommand{}, nil
		},
		"tables": func() (cli.Command, error) {
			return &command.TablesCommand{}, nil
		},
	}

	tinyCLI := &cli.CLI{
		Args:     args,
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("tinyquery"),
	}

	exitCode, err := tinyCLI.Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	os.Exit(exitCode)
}
