package stats

// GrowthRate returns the mean month-over-month percent change of values.
// Pairs whose prior value is zero are skipped; with fewer than two points or
// no usable pair the rate is 0.
func GrowthRate(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var changes []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		changes = append(changes, (values[i]-values[i-1])/values[i-1]*100)
	}
	return Mean(changes)
}
