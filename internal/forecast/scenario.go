package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Scenario is a named multiplier applied to a forecast.
type Scenario string

const (
	Optimistic  Scenario = "optimistic"
	Realistic   Scenario = "realistic"
	Pessimistic Scenario = "pessimistic"
)

var scenarioFactors = map[Scenario]float64{
	Optimistic:  1.20,
	Realistic:   1.00,
	Pessimistic: 0.85,
}

// Factor returns the multiplier of the scenario; unknown scenarios are neutral.
func (s Scenario) Factor() float64 {
	if f, ok := scenarioFactors[s]; ok {
		return f
	}
	return 1.0
}

// ParseScenario resolves a scenario name, defaulting to realistic when empty.
func ParseScenario(s string) (Scenario, error) {
	name := Scenario(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return Realistic, nil
	}
	if _, ok := scenarioFactors[name]; !ok {
		return "", fmt.Errorf("unknown scenario %q (expected optimistic, realistic or pessimistic)", s)
	}
	return name, nil
}

// Scenarios lists the supported scenarios from best to worst case.
func Scenarios() []Scenario {
	return []Scenario{Optimistic, Realistic, Pessimistic}
}

// ScenarioResult is a forecast scaled by a scenario factor.
type ScenarioResult struct {
	Result
	Scenario Scenario `json:"scenario"`
	Factor   float64  `json:"factor"`
}

// Project scales revenue and units by the scenario factor. Model identity and
// accuracy are carried over unchanged.
func Project(r Result, s Scenario) ScenarioResult {
	factor := s.Factor()
	points := make([]Point, len(r.Points))
	for i, p := range r.Points {
		points[i] = Point{
			Month:   p.Month,
			Revenue: p.Revenue * factor,
			Units:   int(math.Round(float64(p.Units) * factor)),
		}
	}
	scaled := r
	scaled.Points = points
	return ScenarioResult{Result: scaled, Scenario: s, Factor: factor}
}
