package forecast

import (
	"errors"
	"fmt"
	"math"

	"planfact/internal/stats"
)

// Result is the output of a single model (or the ensemble).
type Result struct {
	Model    Kind      `json:"model"`
	Points   []Point   `json:"points"`
	Accuracy Accuracy  `json:"accuracy"`
	Fitted   []float64 `json:"fitted,omitempty"` // In-sample revenue fit, aligned with the history
}

// Model fits a monthly series and extrapolates it horizon months ahead.
type Model interface {
	Kind() Kind
	MinPoints() int
	Fit(series Series, horizon int) (Result, error)
}

// Default model parameters.
const (
	DefaultDegree = 2
	DefaultAlpha  = 0.3
	DefaultWindow = 3
)

// Models returns the standard suite in fixed order.
func Models() []Model {
	return []Model{
		LinearModel{},
		PolynomialModel{Degree: DefaultDegree},
		SmoothingModel{Alpha: DefaultAlpha},
		WMAModel{Window: DefaultWindow},
	}
}

// ModelFor returns the standard model of a kind. The ensemble has no single model.
func ModelFor(k Kind) (Model, error) {
	for _, m := range Models() {
		if m.Kind() == k {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no standalone model for %s", k)
}

func checkInput(m Model, series Series, horizon int) error {
	if horizon < 1 {
		return ErrInvalidHorizon
	}
	if len(series) < m.MinPoints() {
		return fmt.Errorf("%s needs at least %d months, got %d: %w", m.Kind(), m.MinPoints(), len(series), ErrInsufficientData)
	}
	return nil
}

// build assembles a Result: predictions are clamped at zero, units rounded,
// and the fitted revenue scored against the history.
func build(kind Kind, series Series, fitted, revenue, units []float64) (Result, error) {
	last, _ := series.Last()
	points := make([]Point, len(revenue))
	for i := range revenue {
		month, err := stats.AddMonths(last.Month, i+1)
		if err != nil {
			return Result{}, err
		}
		points[i] = Point{
			Month:   month,
			Revenue: stats.ClampNonNegative(revenue[i]),
			Units:   int(math.Round(stats.ClampNonNegative(units[i]))),
		}
	}
	return Result{
		Model:    kind,
		Points:   points,
		Accuracy: Score(series.Revenues(), fitted),
		Fitted:   fitted,
	}, nil
}

// LinearModel is ordinary least squares on the month index.
type LinearModel struct{}

func (LinearModel) Kind() Kind { return Linear }
func (LinearModel) MinPoints() int { return 2 }

func (m LinearModel) Fit(series Series, horizon int) (Result, error) {
	if err := checkInput(m, series, horizon); err != nil {
		return Result{}, err
	}
	n := len(series)
	revA, revB := linearFit(series.Revenues())
	unitA, unitB := linearFit(series.UnitValues())

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = revA + revB*float64(i)
	}
	revenue := make([]float64, horizon)
	units := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		x := float64(n + k)
		revenue[k] = revA + revB*x
		units[k] = unitA + unitB*x
	}
	return build(Linear, series, fitted, revenue, units)
}

// linearFit returns intercept and slope of y against 0..n-1.
func linearFit(y []float64) (float64, float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	slope := stats.SafeDiv(n*sumXY-sumX*sumY, n*sumXX-sumX*sumX, 0)
	intercept := (sumY - slope*sumX) / n
	return intercept, slope
}

// PolynomialModel is least squares on [1, i, i^2, ...].
type PolynomialModel struct {
	Degree int
}

func (PolynomialModel) Kind() Kind { return Polynomial }
func (m PolynomialModel) MinPoints() int { return m.degree() + 1 }

func (m PolynomialModel) degree() int {
	if m.Degree < 1 {
		return DefaultDegree
	}
	return m.Degree
}

func (m PolynomialModel) Fit(series Series, horizon int) (Result, error) {
	if err := checkInput(m, series, horizon); err != nil {
		return Result{}, err
	}
	n := len(series)
	revCoef, err := polyFit(series.Revenues(), m.degree())
	if err != nil {
		return Result{}, fmt.Errorf("polynomial revenue fit: %w", err)
	}
	unitCoef, err := polyFit(series.UnitValues(), m.degree())
	if err != nil {
		return Result{}, fmt.Errorf("polynomial units fit: %w", err)
	}

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = polyEval(revCoef, float64(i))
	}
	revenue := make([]float64, horizon)
	units := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		x := float64(n + k)
		revenue[k] = polyEval(revCoef, x)
		units[k] = polyEval(unitCoef, x)
	}
	return build(Polynomial, series, fitted, revenue, units)
}

var errSingular = errors.New("singular normal equations")

// polyFit solves the normal equations (X'X)c = X'y by Gaussian elimination
// with partial pivoting.
func polyFit(y []float64, degree int) ([]float64, error) {
	size := degree + 1
	a := make([][]float64, size)
	for r := range a {
		a[r] = make([]float64, size+1)
	}
	for i, v := range y {
		x := float64(i)
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				a[r][c] += math.Pow(x, float64(r+c))
			}
			a[r][size] += v * math.Pow(x, float64(r))
		}
	}

	for col := 0; col < size; col++ {
		pivot := col
		for r := col + 1; r < size; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < size; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= size; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	coef := make([]float64, size)
	for r := size - 1; r >= 0; r-- {
		sum := a[r][size]
		for c := r + 1; c < size; c++ {
			sum -= a[r][c] * coef[c]
		}
		coef[r] = sum / a[r][r]
	}
	return coef, nil
}

func polyEval(coef []float64, x float64) float64 {
	out := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		out = out*x + coef[i]
	}
	return out
}

// SmoothingModel is simple exponential smoothing extended by the last smoothed step.
type SmoothingModel struct {
	Alpha float64
}

func (SmoothingModel) Kind() Kind { return ExponentialSmoothing }
func (SmoothingModel) MinPoints() int { return 2 }

func (m SmoothingModel) Fit(series Series, horizon int) (Result, error) {
	if err := checkInput(m, series, horizon); err != nil {
		return Result{}, err
	}
	alpha := m.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	n := len(series)
	smoothed := smooth(series.Revenues(), alpha)
	level, trend := smoothed[n-1], smoothed[n-1]-smoothed[n-2]

	// Units extrapolate the raw last step rather than the smoothed one.
	lastUnits := float64(series[n-1].Units)
	unitTrend := lastUnits - float64(series[n-2].Units)

	revenue := make([]float64, horizon)
	units := make([]float64, horizon)
	for k := 1; k <= horizon; k++ {
		revenue[k-1] = level + float64(k)*trend
		units[k-1] = lastUnits + float64(k)*unitTrend
	}
	return build(ExponentialSmoothing, series, smoothed, revenue, units)
}

func smooth(y []float64, alpha float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// WMAModel is a linearly weighted moving average, most recent month weighted highest.
type WMAModel struct {
	Window int
}

func (WMAModel) Kind() Kind { return WeightedMovingAverage }
func (WMAModel) MinPoints() int { return 2 }

func (m WMAModel) Fit(series Series, horizon int) (Result, error) {
	if err := checkInput(m, series, horizon); err != nil {
		return Result{}, err
	}
	window := m.Window
	if window < 1 {
		window = DefaultWindow
	}
	window = min(window, len(series))

	fitted := weightedFit(series.Revenues(), window)
	revenue := weightedForecast(series.Revenues(), window, horizon)
	units := weightedForecast(series.UnitValues(), window, horizon)
	return build(WeightedMovingAverage, series, fitted, revenue, units)
}

func weights(window int) []float64 {
	w := make([]float64, window)
	total := float64(window*(window+1)) / 2
	for i := range w {
		w[i] = float64(i+1) / total
	}
	return w
}

func weightedAvg(values, w []float64) float64 {
	out := 0.0
	for i, v := range values {
		out += v * w[i]
	}
	return out
}

// weightedFit echoes raw values until the window is full.
func weightedFit(y []float64, window int) []float64 {
	w := weights(window)
	out := make([]float64, len(y))
	for i := range y {
		if i < window-1 {
			out[i] = y[i]
			continue
		}
		out[i] = weightedAvg(y[i-window+1:i+1], w)
	}
	return out
}

// weightedForecast feeds every prediction back into the window for the next step.
func weightedForecast(y []float64, window, horizon int) []float64 {
	w := weights(window)
	buf := append([]float64(nil), y[len(y)-window:]...)
	out := make([]float64, horizon)
	for k := range out {
		next := weightedAvg(buf, w)
		out[k] = next
		buf = append(buf[1:], next)
	}
	return out
}
