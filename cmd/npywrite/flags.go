package main

import "github.com/urfave/cli/v3"

const stdoutPath = "-"

// cliOptions collects flag values for one invocation.
type cliOptions struct {
	dtype       string
	separator   string
	output      string
	strictDType bool
	allowRagged bool

	configPath string
	logLevel   string
	logFormat  string
	debug      bool

	// Set from the config file for serve.
	serverAddress string
	maxBodyBytes  int64
}

func convertFlags(o *cliOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dtype",
			Aliases:     []string{"d"},
			Usage:       "data type, one of: u32, i32, u64, i64, f32, f64",
			Value:       "f32",
			Destination: &o.dtype,
		},
		&cli.StringFlag{
			Name:        "separator",
			Aliases:     []string{"s"},
			Usage:       "string used to separate fields",
			Value:       " ",
			Destination: &o.separator,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output file name (- writes to stdout)",
			Value:       "data.npy",
			Destination: &o.output,
		},
		&cli.BoolFlag{
			Name:        "strict-dtype",
			Usage:       "fail on an unknown --dtype instead of falling back to f32",
			Destination: &o.strictDType,
		},
		&cli.BoolFlag{
			Name:        "allow-ragged",
			Usage:       "accept lines with differing field counts (header records the last line's count)",
			Destination: &o.allowRagged,
		},
	}
}

func loggingFlags(o *cliOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Sources:     cli.EnvVars("NPYWRITE_CONFIG"),
			Destination: &o.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &o.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
	}
}
