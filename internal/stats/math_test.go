package stats

import (
	"math"
	"testing"
)

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name     string
		n, d     float64
		def      float64
		expected float64
	}{
		{"Regular", 10, 4, 0, 2.5},
		{"ZeroDenominator", 10, 0, 0, 0},
		{"ZeroDenominatorCustomDefault", 10, 0, -1, -1},
		{"NegativeNumerator", -9, 3, 0, -3},
		{"ZeroNumerator", 0, 5, 7, 0},
		{"OverflowToInf", math.MaxFloat64, 1e-300, 0, 0},
		{"NegativeOverflowToInf", -math.MaxFloat64, 1e-300, 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeDiv(tt.n, tt.d, tt.def)
			if got != tt.expected {
				t.Errorf("SafeDiv(%v, %v, %v) = %v, want %v", tt.n, tt.d, tt.def, got, tt.expected)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("SafeDiv returned non-finite value %v", got)
			}
		})
	}
}

func TestSafeDiv_NaNInputs(t *testing.T) {
	if got := SafeDiv(math.NaN(), 2, 5); got != 5 {
		t.Errorf("Expected default for NaN quotient, got %v", got)
	}
}

func TestPercentAndMean(t *testing.T) {
	if got := Percent(25, 200); got != 12.5 {
		t.Errorf("Percent(25, 200) = %v, want 12.5", got)
	}
	if got := Percent(25, 0); got != 0 {
		t.Errorf("Percent with zero whole = %v, want 0", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in       float64
		places   int
		expected float64
	}{
		{12.346, 2, 12.35},
		{-33.3333, 2, -33.33},
		{99.999, 1, 100},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := RoundTo(tt.in, tt.places); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("RoundTo(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.expected)
		}
	}
}

func TestClampNonNegative(t *testing.T) {
	if ClampNonNegative(-3) != 0 || ClampNonNegative(math.NaN()) != 0 || ClampNonNegative(4) != 4 {
		t.Error("ClampNonNegative did not clamp as expected")
	}
}

func TestCalculateMedianContinuous(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"SingleItem", []float64{5.5}, 5.5},
		{"OddCount", []float64{1.1, 3.3, 2.2, 4.4, 5.5}, 3.3},
		{"EvenCount", []float64{1.1, 2.2, 3.3, 4.4}, 2.75},
		{"Unsorted", []float64{10.5, 2.5, 8.5, 4.5, 6.5}, 6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateMedianContinuous(tt.values); got != tt.expected {
				t.Errorf("CalculateMedianContinuous() = %v, want %v", got, tt.expected)
			}
		})
	}
}
