package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/bgrewell/dts-kit/pkg/logging"
	"github.com/bgrewell/dts-kit/pkg/orchestrate"
)

func runInfo() int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Print verbose (debug) output")
	logLevel := fs.String("log-level", "info", "Log level: info, debug, trace")
	outputJSON := fs.String("output-json", "", "Write a JSON summary to this file")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: dts info <paths...> [--output-json <file>] [--verbose]")
		return 1
	}

	log := newLogger(*logLevel, *verbose)

	report, err := orchestrate.Info(paths, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dts info: %v\n", err)
		return 1
	}

	for _, entry := range report.Data {
		switch {
		case entry.Feature != nil:
			fmt.Printf("feature %d: %s (%d reels)\n", entry.Feature.ID, entry.Feature.Title, len(entry.Feature.Reels))
		case entry.Trailer != nil:
			fmt.Printf("trailer %d: %s\n", entry.Trailer.ID, entry.Trailer.Title)
		}
	}

	if *outputJSON != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "dts info: marshaling JSON summary: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*outputJSON, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "dts info: writing %s: %v\n", *outputJSON, err)
			return 1
		}
	}

	return 0
}

func newLogger(logLevel string, verbose bool) *logging.Logger {
	level := logging.LEVEL_INFO
	switch logLevel {
	case "debug":
		level = logging.LEVEL_DEBUG
	case "trace":
		level = logging.LEVEL_TRACE
	}
	if verbose && level < logging.LEVEL_DEBUG {
		level = logging.LEVEL_DEBUG
	}
	return logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))
}
