// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/buildgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable flag. Each value may also be a comma
// separated list.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("buildgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
buildgraph - Resolves module dependency descriptors into ordered build plans.

Usage:
  buildgraph [options] [DESCRIPTOR_PATH]

Arguments:
  DESCRIPTOR_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var targets stringList
	descriptorsFlag := flagSet.String("descriptors", "", "Path to the descriptor file or directory.")
	dFlag := flagSet.String("d", "", "Path to the descriptor file or directory (shorthand).")
	flagSet.Var(&targets, "target", "Target to resolve. Repeatable or comma separated. Default: every declared target.")
	outFlag := flagSet.String("out", "", "Directory for <target>.plan.<ext> files. Default: write plans to stdout.")
	formatFlag := flagSet.String("format", "json", "Plan format. Options: 'json', 'yaml' or 'hcl'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	metricsFlag := flagSet.String("metrics-file", "", "Write resolution metrics to this file in Prometheus text format.")
	parallelFlag := flagSet.Int("parallel", 4, "Maximum number of targets resolved concurrently.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *descriptorsFlag != "" {
		path = *descriptorsFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Descriptor path determined.", "path", path)

	if path == "" {
		slog.Debug("No descriptor path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if *parallelFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid parallel: must be at least 1"}
	}

	config, err := app.NewConfig(app.Config{
		DescriptorPath: path,
		Targets:        targets,
		OutputDir:      *outFlag,
		Format:         strings.ToLower(*formatFlag),
		LogFormat:      strings.ToLower(*logFormatFlag),
		LogLevel:       strings.ToLower(*logLevelFlag),
		MetricsFile:    *metricsFlag,
		Parallel:       *parallelFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
