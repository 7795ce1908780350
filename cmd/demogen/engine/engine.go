package engine

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"planfact/internal/export"
	"planfact/internal/sales"
)

type GeneratorConfig struct {
	Outlets int
	Start   time.Time // First sale day
	Months  int
	Seed    int64
}

// segmentProfile is the price range of a single sale and the monthly revenue
// plan baseline of one outlet.
type segmentProfile struct {
	Name        string
	MinPrice    float64
	MaxPrice    float64
	BaseRevenue float64
}

var profiles = []segmentProfile{
	{Name: "Premium", MinPrice: 15000, MaxPrice: 30000, BaseRevenue: 800000},
	{Name: "Medium", MinPrice: 8000, MaxPrice: 15000, BaseRevenue: 600000},
	{Name: "Economy", MinPrice: 3000, MaxPrice: 8000, BaseRevenue: 400000},
	{Name: "Sun", MinPrice: 5000, MaxPrice: 12000, BaseRevenue: 350000},
}

// Sales per outlet, segment and day are drawn from [minDaily, maxDaily].
const (
	minDaily = 5
	maxDaily = 19
)

// unitsPerBase converts a plan revenue into planned units.
const unitsPerBase = 150

var factHeader = append(append([]string{}, sales.FactColumns...), "Art", "Describe", "Model")

// Generate produces a fact and a plan table for the configured network.
func Generate(cfg GeneratorConfig) (facts, plans export.Table) {
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Months <= 0 {
		cfg.Months = 3
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	facts = export.Table{Name: "fact", Header: factHeader}
	plans = export.Table{Name: "plan", Header: sales.PlanColumns}
	end := cfg.Start.AddDate(0, cfg.Months, 0)

	for i := 1; i <= cfg.Outlets; i++ {
		outlet := fmt.Sprintf("Outlet_%02d", i)
		for day := cfg.Start; day.Before(end); day = day.AddDate(0, 0, 1) {
			for _, p := range profiles {
				n := minDaily + rng.Intn(maxDaily-minDaily+1)
				for range n {
					price := round2(p.MinPrice + rng.Float64()*(p.MaxPrice-p.MinPrice))
					facts.Rows = append(facts.Rows, []any{
						outlet, day.Format("2006-01-02"), p.Name, price, 1, price,
						fmt.Sprintf("ART%d", 1000+rng.Intn(9000)),
						"Frame " + p.Name,
						fmt.Sprintf("Model_%d", 1+rng.Intn(49)),
					})
				}
			}
		}

		for m := 0; m < cfg.Months; m++ {
			month := cfg.Start.AddDate(0, m, 0).Format("2006-01")
			for _, p := range profiles {
				revenue := p.BaseRevenue * (0.8 + rng.Float64()*0.4)
				units := int(revenue / (p.BaseRevenue / unitsPerBase))
				plans.Rows = append(plans.Rows, []any{outlet, p.Name, month, round2(revenue), units})
			}
		}
	}
	return facts, plans
}

// Save writes fact and plan files into dir as CSV or XLSX and returns their paths.
func Save(dir string, format export.Format, facts, plans export.Table) ([]string, error) {
	if format == export.FormatCSV {
		return export.Write(dir, format, []export.Table{facts, plans})
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for _, t := range []export.Table{facts, plans} {
		path := filepath.Join(dir, t.Name+".xlsx")
		if err := export.WriteXLSXFile(path, []export.Table{t}); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
