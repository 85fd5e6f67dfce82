package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npywrite/internal/version"
)

func versionCmd(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Resolve()
			fmt.Fprintf(stdout, "version: %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(stdout, "commit:  %s\n", info.Commit)
			}
			if info.Go != "" {
				fmt.Fprintf(stdout, "go:      %s\n", info.Go)
			}
			return nil
		},
	}
}
