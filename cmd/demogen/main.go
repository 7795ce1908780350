package main

import (
	"flag"
	"fmt"
	"os"

	"planfact/cmd/demogen/engine"
	"planfact/internal/export"
)

func main() {
	outlets := flag.Int("outlets", 10, "Number of outlets to generate")
	months := flag.Int("months", 3, "Number of months starting January 2025")
	seed := flag.Int64("seed", 42, "Random seed")
	format := flag.String("format", "csv", "Output format: csv, xlsx")
	outDir := flag.String("out", "./data", "Output directory for demo files")
	flag.Parse()

	f, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{Outlets: *outlets, Months: *months, Seed: *seed}
	fmt.Printf("Generating %d outlets over %d months (seed %d) to %s...\n", cfg.Outlets, cfg.Months, cfg.Seed, *outDir)

	facts, plans := engine.Generate(cfg)

	paths, err := engine.Save(*outDir, f, facts, plans)
	if err != nil {
		fmt.Printf("Failed to save demo data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d sales, %d plan rows in %v\n", len(facts.Rows), len(plans.Rows), paths)
}
