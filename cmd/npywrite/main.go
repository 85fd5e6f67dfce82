package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Failures are
// reported as a single line on stdout, or on stderr when stdout carries
// the array itself.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &cliOptions{}
	app := &cli.Command{
		Name:         "npywrite",
		Usage:        "Read delimited text from STDIN and write a NumPy .npy array file",
		UsageText:    "npywrite [-d type] [-s separator] [-o file] < input.txt",
		Flags:        append(convertFlags(opts), loggingFlags(opts)...),
		Before:       setup(opts, stderr),
		Action:       convertAction(opts, stdin, stdout),
		Writer:       stdout,
		ErrWriter:    stderr,
		OnUsageError: usageError,
		Commands: []*cli.Command{
			inspectCmd(stdout),
			serveCmd(opts),
			versionCmd(stdout),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		w := stdout
		if opts.output == stdoutPath {
			w = stderr
		}
		_, _ = fmt.Fprintln(w, "npywrite:", err)
		return 1
	}
	return 0
}

// usageError hands flag errors back to run unchanged so they are reported as
// one line without the help text.
func usageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}
