package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/orchestrate"
)

func runExtract() int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Print verbose (debug) output")
	logLevel := fs.String("log-level", "info", "Log level: info, debug, trace")
	featureName := fs.String("feature-name", "", "Extract the feature with this title")
	featureID := fs.String("feature-id", "", "Extract the feature with this numeric id")
	trailerNames := fs.String("trailer-names", "", "Comma-separated trailer titles to extract as a combined reel")
	trailerIDs := fs.String("trailer-ids", "", "Comma-separated trailer ids to extract as a combined reel")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}

	args := fs.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: dts extract <input-dir> <output-dir> [--feature-name=STR | --feature-id=U16] [--trailer-names=STR[,STR...] | --trailer-ids=U16[,U16...]]")
		return 1
	}

	opts := orchestrate.ExtractOptions{InputDir: args[0], OutputDir: args[1]}

	feature, err := parseFeatureSelector(*featureName, *featureID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dts extract: %v\n", err)
		return 1
	}
	opts.Feature = feature

	trailerSel, err := parseTrailerSelector(*trailerNames, *trailerIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dts extract: %v\n", err)
		return 1
	}
	opts.Trailers = trailerSel

	if opts.Feature == nil && opts.Trailers == nil {
		fmt.Fprintln(os.Stderr, "dts extract: one of --feature-name, --feature-id, --trailer-names, --trailer-ids is required")
		return 1
	}

	log := newLogger(*logLevel, *verbose)
	if err := orchestrate.Extract(opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "dts extract: %v\n", err)
		return 1
	}
	return 0
}

func parseFeatureSelector(name, id string) (*orchestrate.FeatureSelector, error) {
	if name != "" && id != "" {
		return nil, fmt.Errorf("--feature-name and --feature-id are mutually exclusive")
	}
	if name != "" {
		return &orchestrate.FeatureSelector{Name: name}, nil
	}
	if id != "" {
		v, err := strconv.ParseUint(id, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("--feature-id: %w", err)
		}
		u := uint16(v)
		return &orchestrate.FeatureSelector{ID: &u}, nil
	}
	return nil, nil
}

func parseTrailerSelector(names, ids string) (*orchestrate.TrailerSelector, error) {
	if names != "" && ids != "" {
		return nil, fmt.Errorf("--trailer-names and --trailer-ids are mutually exclusive")
	}
	if names != "" {
		return &orchestrate.TrailerSelector{Names: strings.Split(names, ",")}, nil
	}
	if ids != "" {
		parts := strings.Split(ids, ",")
		out := make([]uint16, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
			if err != nil {
				return nil, fmt.Errorf("--trailer-ids: %w", err)
			}
			out[i] = uint16(v)
		}
		return &orchestrate.TrailerSelector{IDs: out}, nil
	}
	return nil, nil
}
