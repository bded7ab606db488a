package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	personaPath := flag.String("personas", "", "override persona library YAML")
	verbose := flag.Bool("v", false, "print each turn's response text")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--personas path/to/personas.yaml] [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *personaPath, *verbose))
}

// #endregion main

// #region run

func run(fixturePath, personaPath string, verbose bool) int {
	library := persona.DefaultLibrary()
	if personaPath != "" {
		var err error
		library, err = persona.LoadLibrary(personaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load persona library: %v\n", err)
			return 2
		}
	}

	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, err := replay.Run(f, library)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	return printComparison(f, results, verbose)
}

// printComparison outputs a per-turn comparison table and returns the exit code.
func printComparison(f *replay.Fixture, results []replay.Result, verbose bool) int {
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	fmt.Printf("%-6s| %-14s| %-18s| %-7s| %s\n", "Turn", "Mood", "Stop", "Tokens", "Match")
	fmt.Printf("%-6s+%-15s+%-19s+%-8s+%s\n",
		"------", "---------------", "-------------------", "--------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Passed {
			match = "DIFF"
		}
		fmt.Printf("%-6d| %-14s| %-18s| %-7d| %s\n", r.TurnNo, r.Mood, r.StopReason, r.TokenCount, match)
		for _, failure := range r.Failures {
			fmt.Printf("       %s\n", failure)
		}
		if verbose {
			fmt.Printf("       response: %q\n", r.Response)
		}
	}

	summary := replay.Summarize(f, results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n",
		summary.TotalTurns, summary.Passed, summary.Failed)

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion run
