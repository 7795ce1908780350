package forecast

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of fitting one model. Err is set when the model was skipped.
type Outcome struct {
	Kind   Kind
	Result Result
	Err    error
}

// Suite holds every model that produced a forecast plus their ensemble.
type Suite struct {
	Models   []Result        `json:"models"`
	Ensemble Result          `json:"ensemble"`
	Skipped  map[Kind]string `json:"skipped,omitempty"`
}

// FitAll fits models concurrently. Outcomes are returned in the order of
// models regardless of completion order. Model failures are reported per
// outcome; only context cancellation fails the call.
func FitAll(ctx context.Context, models []Model, series Series, horizon int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(models))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := m.Fit(series, horizon)
			outcomes[i] = Outcome{Kind: m.Kind(), Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Combine averages the successful outcomes month by month. Units are rounded
// and accuracy is the mean of the contributors' metrics.
func Combine(outcomes []Outcome) (Result, error) {
	var contributors []Result
	for _, o := range outcomes {
		if o.Err == nil {
			contributors = append(contributors, o.Result)
		}
	}
	if len(contributors) == 0 {
		return Result{}, ErrNoForecast
	}

	first := contributors[0]
	n := float64(len(contributors))
	points := make([]Point, len(first.Points))
	for i := range points {
		var revenue, units float64
		for _, c := range contributors {
			revenue += c.Points[i].Revenue
			units += float64(c.Points[i].Units)
		}
		points[i] = Point{
			Month:   first.Points[i].Month,
			Revenue: revenue / n,
			Units:   int(math.Round(units / n)),
		}
	}

	fitted := make([]float64, len(first.Fitted))
	for i := range fitted {
		for _, c := range contributors {
			fitted[i] += c.Fitted[i]
		}
		fitted[i] /= n
	}

	return Result{
		Model:    Ensemble,
		Points:   points,
		Accuracy: MeanAccuracy(contributors),
		Fitted:   fitted,
	}, nil
}

// Run fits the standard suite and its ensemble. When every model is skipped
// the partial suite is returned together with ErrNoForecast.
func Run(ctx context.Context, series Series, horizon int) (*Suite, error) {
	if horizon < 1 {
		return nil, ErrInvalidHorizon
	}
	outcomes, err := FitAll(ctx, Models(), series, horizon)
	if err != nil {
		return nil, err
	}

	suite := &Suite{Skipped: make(map[Kind]string)}
	for _, o := range outcomes {
		if o.Err != nil {
			suite.Skipped[o.Kind] = o.Err.Error()
			continue
		}
		suite.Models = append(suite.Models, o.Result)
	}

	ens, err := Combine(outcomes)
	if err != nil {
		return suite, err
	}
	suite.Ensemble = ens
	return suite, nil
}

// Select returns the forecast of the given kind from the suite.
func (s *Suite) Select(k Kind) (Result, error) {
	if k == Ensemble {
		if len(s.Models) == 0 {
			return Result{}, ErrNoForecast
		}
		return s.Ensemble, nil
	}
	for _, r := range s.Models {
		if r.Model == k {
			return r, nil
		}
	}
	if reason, ok := s.Skipped[k]; ok {
		return Result{}, fmt.Errorf("%s was skipped (%s): %w", k, reason, ErrInsufficientData)
	}
	return Result{}, fmt.Errorf("%s: %w", k, ErrNoForecast)
}

// All returns the individual model results followed by the ensemble.
func (s *Suite) All() []Result {
	out := append([]Result(nil), s.Models...)
	if len(s.Models) > 0 {
		out = append(out, s.Ensemble)
	}
	return out
}
