package forecast

import (
	"context"
	"fmt"
	"math"

	"planfact/internal/stats"
)

// HitTolerance is the absolute error percent within which a one-step
// prediction counts as a hit.
const HitTolerance = 10.0

// Checkpoint is one month of the history predicted from the months before it.
type Checkpoint struct {
	Month     string  `json:"month"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	ErrorPct  float64 `json:"error_pct"` // (predicted - actual) / actual * 100
	Hit       bool    `json:"hit"`
}

// Backtest is the walk-forward record of one model.
type Backtest struct {
	Model       Kind         `json:"model"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	MAPE        float64      `json:"mape"`
	HitRate     float64      `json:"hit_rate_pct"`
}

// WalkForward replays the history: for every month that has at least two
// months before it, each model (and the ensemble) is fitted on the preceding
// months only and its one-month-ahead revenue is compared with what happened.
// Results are returned in suite order followed by the ensemble; models that
// never had enough history are omitted.
func WalkForward(ctx context.Context, series Series) ([]Backtest, error) {
	if len(series) < 3 {
		return nil, fmt.Errorf("walk-forward needs at least 3 months, got %d: %w", len(series), ErrInsufficientData)
	}

	models := Models()
	byKind := make(map[Kind][]Checkpoint)
	for cut := 2; cut < len(series); cut++ {
		outcomes, err := FitAll(ctx, models, series[:cut], 1)
		if err != nil {
			return nil, err
		}
		actual := series[cut]
		for _, o := range outcomes {
			if o.Err == nil {
				byKind[o.Kind] = append(byKind[o.Kind], checkpoint(actual, o.Result))
			}
		}
		if ens, err := Combine(outcomes); err == nil {
			byKind[Ensemble] = append(byKind[Ensemble], checkpoint(actual, ens))
		}
	}

	var out []Backtest
	for _, k := range Kinds() {
		cps, ok := byKind[k]
		if !ok {
			continue
		}
		out = append(out, summarizeBacktest(k, cps))
	}
	return out, nil
}

func checkpoint(actual Point, r Result) Checkpoint {
	predicted := r.Points[0].Revenue
	errPct := stats.Percent(predicted-actual.Revenue, actual.Revenue)
	return Checkpoint{
		Month:     actual.Month,
		Actual:    actual.Revenue,
		Predicted: predicted,
		ErrorPct:  stats.RoundTo(errPct, 2),
		Hit:       actual.Revenue != 0 && math.Abs(errPct) <= HitTolerance,
	}
}

func summarizeBacktest(k Kind, cps []Checkpoint) Backtest {
	var actual, predicted []float64
	hits := 0
	for _, c := range cps {
		actual = append(actual, c.Actual)
		predicted = append(predicted, c.Predicted)
		if c.Hit {
			hits++
		}
	}
	return Backtest{
		Model:       k,
		Checkpoints: cps,
		MAPE:        Score(actual, predicted).MAPE,
		HitRate:     stats.Percent(float64(hits), float64(len(cps))),
	}
}
