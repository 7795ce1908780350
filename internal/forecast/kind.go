package forecast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientData is returned by a model when the series is too short for it.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoForecast is returned when no model could produce a forecast.
	ErrNoForecast = errors.New("no forecast available")
	// ErrInvalidHorizon is returned for horizons below one month.
	ErrInvalidHorizon = errors.New("forecast horizon must be at least 1")
)

// Kind identifies a forecasting model. The zero value means unspecified.
type Kind int

const (
	Linear Kind = iota + 1
	Polynomial
	ExponentialSmoothing
	WeightedMovingAverage
	Ensemble
)

var kindNames = map[Kind]string{
	Linear:                "linear",
	Polynomial:            "polynomial",
	ExponentialSmoothing:  "exp_smoothing",
	WeightedMovingAverage: "wma",
	Ensemble:              "ensemble",
}

var kindAliases = map[string]Kind{
	"linear":                  Linear,
	"linear_regression":       Linear,
	"polynomial":              Polynomial,
	"poly":                    Polynomial,
	"exp_smoothing":           ExponentialSmoothing,
	"exponential_smoothing":   ExponentialSmoothing,
	"wma":                     WeightedMovingAverage,
	"weighted_moving_average": WeightedMovingAverage,
	"ensemble":                Ensemble,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts any name understood by ParseKind.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a model name. Matching ignores case and treats dashes as underscores.
func ParseKind(s string) (Kind, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown forecast model %q", s)
}

// Kinds lists every kind in presentation order, ending with the ensemble.
func Kinds() []Kind {
	return []Kind{Linear, Polynomial, ExponentialSmoothing, WeightedMovingAverage, Ensemble}
}
