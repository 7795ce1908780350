package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"planfact/internal/config"
	"planfact/internal/forecast"
	"planfact/internal/stats"

	"github.com/go-playground/validator/v10"
)

// Option defaults.
const (
	DefaultHorizon          = 3
	DefaultAdjustmentFactor = 1.0
	MaxHorizon              = 24
)

// Options controls a pipeline run.
type Options struct {
	Horizon          int               `json:"horizon" yaml:"horizon" validate:"gte=1,lte=24"`
	Scenario         forecast.Scenario `json:"scenario" yaml:"scenario" validate:"oneof=optimistic realistic pessimistic"`
	Model            forecast.Kind     `json:"model" yaml:"model" validate:"gte=1,lte=5"`
	AdjustmentFactor float64           `json:"adjustment_factor" yaml:"adjustment_factor" validate:"gt=0,lte=10"`
	Grain            stats.Grain       `json:"grain" yaml:"grain" validate:"oneof=day week month"`
	Months           []string          `json:"months,omitempty" yaml:"months" validate:"dive,datetime=2006-01"`
	Segments         []string          `json:"segments,omitempty" yaml:"segments"`
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		Horizon:          DefaultHorizon,
		Scenario:         forecast.Realistic,
		Model:            forecast.Ensemble,
		AdjustmentFactor: DefaultAdjustmentFactor,
		Grain:            stats.GrainMonth,
	}
}

// WithDefaults fills zero-valued fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Horizon == 0 {
		o.Horizon = d.Horizon
	}
	if o.Scenario == "" {
		o.Scenario = d.Scenario
	}
	if o.Model == 0 {
		o.Model = d.Model
	}
	if o.AdjustmentFactor == 0 {
		o.AdjustmentFactor = d.AdjustmentFactor
	}
	if o.Grain == "" {
		o.Grain = d.Grain
	}
	return o
}

var validate = validator.New()

// OptionsError lists the option fields that failed validation with the rule
// (or parse error) they broke.
type OptionsError struct {
	Fields map[string]string
}

func (e *OptionsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", field, tag))
	}
	sort.Strings(parts)
	return "invalid options: " + strings.Join(parts, ", ")
}

// Validate checks the options against their constraints.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &OptionsError{Fields: make(map[string]string, len(verrs))}
	for _, ve := range verrs {
		out.Fields[ve.Field()] = ve.Tag()
	}
	return out
}

// Request carries options in their textual form, as received from the CLI,
// HTTP or MCP callers. Empty fields fall back to a base Options.
type Request struct {
	Horizon          int      `json:"horizon,omitempty" form:"horizon"`
	Scenario         string   `json:"scenario,omitempty" form:"scenario"`
	Model            string   `json:"model,omitempty" form:"model"`
	AdjustmentFactor float64  `json:"adjustment_factor,omitempty" form:"adjustment_factor"`
	Grain            string   `json:"grain,omitempty" form:"grain"`
	Months           []string `json:"months,omitempty" form:"months"`
	Segments         []string `json:"segments,omitempty" form:"segments"`
}

// Options resolves the request on top of base and validates the result.
func (r Request) Options(base Options) (Options, error) {
	o := base
	if r.Horizon != 0 {
		o.Horizon = r.Horizon
	}
	if r.Scenario != "" {
		s, err := forecast.ParseScenario(r.Scenario)
		if err != nil {
			return Options{}, &OptionsError{Fields: map[string]string{"Scenario": err.Error()}}
		}
		o.Scenario = s
	}
	if r.Model != "" {
		k, err := forecast.ParseKind(r.Model)
		if err != nil {
			return Options{}, &OptionsError{Fields: map[string]string{"Model": err.Error()}}
		}
		o.Model = k
	}
	if r.AdjustmentFactor != 0 {
		o.AdjustmentFactor = r.AdjustmentFactor
	}
	if r.Grain != "" {
		g, err := stats.ParseGrain(r.Grain)
		if err != nil {
			return Options{}, &OptionsError{Fields: map[string]string{"Grain": err.Error()}}
		}
		o.Grain = g
	}
	if len(r.Months) > 0 {
		o.Months = r.Months
	}
	if len(r.Segments) > 0 {
		o.Segments = r.Segments
	}
	o = o.WithDefaults()
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// FromConfig resolves configured analysis defaults into Options.
func FromConfig(a config.Analysis) (Options, error) {
	return Request{
		Horizon:          a.Horizon,
		Scenario:         a.Scenario,
		Model:            a.Model,
		AdjustmentFactor: a.AdjustmentFactor,
		Grain:            a.Grain,
		Months:           a.Months,
		Segments:         a.Segments,
	}.Options(DefaultOptions())
}
