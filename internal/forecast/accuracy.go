package forecast

import (
	"math"

	"planfact/internal/stats"
)

// Accuracy scores an in-sample fit. Percent variants are relative to the mean
// of the actual series.
type Accuracy struct {
	MAPE    float64 `json:"mape"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
	RMSEPct float64 `json:"rmse_pct"`
	MAEPct  float64 `json:"mae_pct"`
}

// Score compares fitted values against actuals. MAPE only counts months with a
// nonzero actual; with none it is 0.
func Score(actual, fitted []float64) Accuracy {
	n := min(len(actual), len(fitted))
	if n == 0 {
		return Accuracy{}
	}

	var sumSq, sumAbs, sumPct float64
	pctCount := 0
	for i := 0; i < n; i++ {
		diff := actual[i] - fitted[i]
		sumSq += diff * diff
		sumAbs += math.Abs(diff)
		if actual[i] != 0 {
			sumPct += math.Abs(diff / actual[i])
			pctCount++
		}
	}

	rmse := math.Sqrt(sumSq / float64(n))
	mae := sumAbs / float64(n)
	mean := stats.Mean(actual[:n])
	return Accuracy{
		MAPE:    stats.SafeDiv(sumPct, float64(pctCount), 0) * 100,
		RMSE:    rmse,
		MAE:     mae,
		RMSEPct: stats.Percent(rmse, mean),
		MAEPct:  stats.Percent(mae, mean),
	}
}

// MeanAccuracy averages each metric across results.
func MeanAccuracy(results []Result) Accuracy {
	if len(results) == 0 {
		return Accuracy{}
	}
	var out Accuracy
	for _, r := range results {
		out.MAPE += r.Accuracy.MAPE
		out.RMSE += r.Accuracy.RMSE
		out.MAE += r.Accuracy.MAE
		out.RMSEPct += r.Accuracy.RMSEPct
		out.MAEPct += r.Accuracy.MAEPct
	}
	n := float64(len(results))
	out.MAPE /= n
	out.RMSE /= n
	out.MAE /= n
	out.RMSEPct /= n
	out.MAEPct /= n
	return out
}
