// Command dts is the CLI entrypoint for inspecting and extracting DTS
// theatrical-sound disc assets: info, extract, and detect subcommands
// each dispatch into pkg/orchestrate, one operation per file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printTopLevelUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	// Shift the subcommand out so each subcommand's own flag parser
	// sees argv as if it were the whole program's arguments.
	os.Args = append(os.Args[:1], os.Args[2:]...)

	var exitCode int
	switch cmd {
	case "info":
		exitCode = runInfo()
	case "extract":
		exitCode = runExtract()
	case "detect":
		exitCode = runDetect()
	case "-h", "--help", "help":
		printTopLevelUsage()
		exitCode = 0
	default:
		fmt.Fprintf(os.Stderr, "dts: unknown command %q\n", cmd)
		printTopLevelUsage()
		exitCode = 1
	}
	os.Exit(exitCode)
}

func printTopLevelUsage() {
	fmt.Println("Usage: dts <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  info      print descriptive records for one or more paths")
	fmt.Println("  extract   copy feature reels or synthesize a trailer set")
	fmt.Println("  detect    print the type-detection decision for a single path")
}
