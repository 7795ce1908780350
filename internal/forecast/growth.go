package forecast

import (
	"fmt"
	"math"

	"planfact/internal/stats"
)

// Compound projects the last month of the series forward at a constant
// monthly growth rate given in percent: value * (1 + rate/100)^k.
func Compound(series Series, ratePct float64, horizon int) ([]Point, error) {
	if horizon < 1 {
		return nil, ErrInvalidHorizon
	}
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("growth projection: %w", ErrInsufficientData)
	}

	factor := 1 + ratePct/100
	points := make([]Point, horizon)
	for k := 1; k <= horizon; k++ {
		month, err := stats.AddMonths(last.Month, k)
		if err != nil {
			return nil, err
		}
		m := math.Pow(factor, float64(k))
		points[k-1] = Point{
			Month:   month,
			Revenue: stats.ClampNonNegative(last.Revenue * m),
			Units:   int(math.Round(stats.ClampNonNegative(float64(last.Units) * m))),
		}
	}
	return points, nil
}
