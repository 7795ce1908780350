package pipeline

import (
	"errors"
	"testing"

	"planfact/internal/config"
	"planfact/internal/forecast"
	"planfact/internal/stats"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("Default options failed validation: %v", err)
	}
}

func TestRequestOptions(t *testing.T) {
	base := DefaultOptions()

	o, err := Request{Horizon: 6, Scenario: "pessimistic", Model: "poly", Grain: "week"}.Options(base)
	if err != nil {
		t.Fatalf("Options returned error: %v", err)
	}
	if o.Horizon != 6 || o.Scenario != forecast.Pessimistic || o.Model != forecast.Polynomial || o.Grain != stats.GrainWeek {
		t.Errorf("Unexpected options: %+v", o)
	}
	if o.AdjustmentFactor != DefaultAdjustmentFactor {
		t.Errorf("Expected base adjustment factor, got %v", o.AdjustmentFactor)
	}

	if _, err := (Request{Model: "arima"}).Options(base); err == nil {
		t.Error("Expected error for unknown model")
	}
	if _, err := (Request{Scenario: "bleak"}).Options(base); err == nil {
		t.Error("Expected error for unknown scenario")
	}

	_, err = Request{Horizon: MaxHorizon + 1}.Options(base)
	var optErr *OptionsError
	if !errors.As(err, &optErr) || optErr.Fields["Horizon"] != "lte" {
		t.Errorf("Expected Horizon lte failure, got %v", err)
	}

	for _, month := range []string{"January", "2025/02", "2025-13", "25-02"} {
		_, err = Request{Months: []string{month}}.Options(base)
		if !errors.As(err, &optErr) || optErr.Fields["Months[0]"] != "datetime" {
			t.Errorf("Expected month %q to fail validation, got %v", month, err)
		}
	}
	if _, err := (Request{Months: []string{"2025-02"}}).Options(base); err != nil {
		t.Errorf("Expected well-formed month to pass, got %v", err)
	}

	_, err = Request{Grain: "weekly"}.Options(base)
	if !errors.As(err, &optErr) || optErr.Fields["Grain"] == "" {
		t.Errorf("Expected unknown grain to be rejected, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	o, err := FromConfig(config.Analysis{Horizon: 4, Scenario: "optimistic", Model: "ensemble", AdjustmentFactor: 1.1, Grain: "day"})
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	if o.Horizon != 4 || o.Scenario != forecast.Optimistic || o.Model != forecast.Ensemble || o.AdjustmentFactor != 1.1 || o.Grain != stats.GrainDay {
		t.Errorf("Unexpected options from config: %+v", o)
	}
}
