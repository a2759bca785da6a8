package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"

	"github.com/bgrewell/dts-kit/pkg/orchestrate"
)

func runDetect() int {
	u := usage.NewUsage(
		usage.WithApplicationName("dts detect"),
		usage.WithApplicationDescription("detect prints the type-detection decision for a single path: which probe resolved it, the resolved kind, and the byte offsets examined along the way."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "", nil)
	path := u.AddArgument(1, "path", "Path to the file to classify", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		return 1
	}
	if *help {
		u.PrintUsage()
		return 0
	}
	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("a <path> must be provided"))
		return 1
	}

	report, err := orchestrate.DetectPath(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dts detect: %v\n", err)
		return 1
	}

	fmt.Printf("%s: %s (resolved by %s)\n", report.Path, report.Kind, report.Method)
	for _, probe := range report.Probes {
		status := "no match"
		if probe.Matched {
			status = "match"
		}
		fmt.Printf("  %-10s offset=%-6d length=%-3d %s\n", probe.Name, probe.Offset, probe.Length, status)
	}
	return 0
}
