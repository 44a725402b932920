package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "recipelint",
		Usage:                 "Validate automation recipes against connector contracts",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			ValidateCommand(),
			ServeCommand(),
			WatchCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
