package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region main

func main() {
	ggufPath := flag.String("gguf", "", "load vocabulary from a GGUF model file")
	size := flag.Int("size", 1000, "synthetic vocabulary size (ignored with -gguf)")
	top := flag.Int("top", 10, "show N highest-ranked tokens")
	flag.Parse()

	entries, err := loadEntries(*ggufPath, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load vocabulary: %v\n", err)
		os.Exit(1)
	}

	profile, err := vocab.Build(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build profile: %v\n", err)
		os.Exit(1)
	}

	report(profile, *top)
}

func loadEntries(ggufPath string, size int) ([]vocab.Entry, error) {
	if ggufPath != "" {
		return vocab.LoadGGUF(ggufPath)
	}
	entries := make([]vocab.Entry, size)
	for i := range entries {
		entries[i] = vocab.Entry{ID: i, Text: fmt.Sprintf("tok%d ", i), Score: float32(size - i)}
	}
	return entries, nil
}

// #endregion main

// #region report

func report(p *vocab.Profile, top int) {
	n := p.Size()
	fmt.Printf("Vocabulary: %d tokens\n\n", n)

	categories := []struct {
		name string
		has  func(id int) bool
	}{
		{"common", p.IsCommon},
		{"rare", p.IsRare},
		{"punct", p.IsPunct},
		{"dialogue", p.IsDialogue},
		{"unflagged", func(id int) bool { return p.Flags(id) == 0 }},
	}

	fmt.Printf("%-10s  %7s  %7s  %9s  %8s  %9s  %9s\n",
		"Category", "Tokens", "Share", "Bias Mean", "Bias Std", "Bias Min", "Bias Max")
	for _, cat := range categories {
		biases := collectBiases(p, cat.has)
		if len(biases) == 0 {
			fmt.Printf("%-10s  %7d  %6.1f%%  %9s  %8s  %9s  %9s\n", cat.name, 0, 0.0, "-", "-", "-", "-")
			continue
		}
		mean, std := stat.MeanStdDev(biases, nil)
		if len(biases) == 1 {
			std = 0
		}
		fmt.Printf("%-10s  %7d  %6.1f%%  %9.4f  %8.4f  %9.4f  %9.4f\n",
			cat.name, len(biases), 100*float64(len(biases))/float64(n),
			mean, std, biases[0], biases[len(biases)-1])
	}

	sorted := make([]float64, 0, n)
	for id := 0; id < n; id++ {
		sorted = append(sorted, float64(p.BaseBias(id)))
	}
	sort.Float64s(sorted)
	fmt.Printf("\nBias quantiles: p10=%.4f p50=%.4f p90=%.4f\n",
		stat.Quantile(0.10, stat.Empirical, sorted, nil),
		stat.Quantile(0.50, stat.Empirical, sorted, nil),
		stat.Quantile(0.90, stat.Empirical, sorted, nil))

	fmt.Printf("\nTop %d tokens by rank:\n", top)
	for rank := 0; rank < top && rank < n; rank++ {
		id := p.TokenAtRank(rank)
		fmt.Printf("  %4d  %-20q  bias=%.4f  flags=%s\n", rank, p.Text(id), p.BaseBias(id), flagString(p, id))
	}
}

// collectBiases returns the ascending bias values of every token in a category.
func collectBiases(p *vocab.Profile, has func(id int) bool) []float64 {
	var biases []float64
	for id := 0; id < p.Size(); id++ {
		if has(id) {
			biases = append(biases, float64(p.BaseBias(id)))
		}
	}
	sort.Float64s(biases)
	return biases
}

func flagString(p *vocab.Profile, id int) string {
	s := ""
	if p.IsCommon(id) {
		s += "C"
	}
	if p.IsRare(id) {
		s += "R"
	}
	if p.IsPunct(id) {
		s += "P"
	}
	if p.IsDialogue(id) {
		s += "D"
	}
	if s == "" {
		s = "-"
	}
	return s
}

// #endregion report
