// internal/satellite/temporal.go
package satellite

import (
	"math"

	"agroscore/internal/common/errors"
	"agroscore/internal/models"
)

// MinUsableSamples is the minimum number of cloud-free monthly samples a
// series needs before its trend can be trusted. Shorter series must go
// through the orchestrator fallback policy instead.
const MinUsableSamples = 3

const (
	improvingThreshold = 0.05
	decliningThreshold = -0.05
	stableTrendScore   = 0.6
)

// AnalyzeSeries computes trend and consistency metrics for a chronological
// vegetation series. Returns INSUFFICIENT_SAMPLES when the series is too
// short to be reliable; it never silently pads the data.
func AnalyzeSeries(series *models.TemporalSeries) (*models.TemporalMetrics, error) {
	if series == nil || len(series.Samples) < MinUsableSamples {
		got := 0
		if series != nil {
			got = len(series.Samples)
		}
		return nil, errors.NewInsufficientSamplesError(got, MinUsableSamples)
	}

	values := series.Values()
	change := values[len(values)-1] - values[0]

	var direction models.TrendDirection
	var trendScore float64
	switch {
	case change > improvingThreshold:
		direction = models.TrendImproving
		trendScore = math.Min(1.0, 0.7+change)
	case change < decliningThreshold:
		direction = models.TrendDeclining
		trendScore = math.Max(0.2, 0.5+change)
	default:
		// Flat midpoint for stable series, not a fitted trend line.
		direction = models.TrendStable
		trendScore = stableTrendScore
	}

	// Tight inter-month variance is evidence of stable farming practice.
	consistency := clamp(1.0-3.0*stddev(values), 0, 1)

	return &models.TemporalMetrics{
		Trend:            values,
		Current:          round3(values[len(values)-1]),
		Average:          round3(mean(values)),
		Change:           round3(change),
		TrendDirection:   direction,
		TrendScore:       round3(trendScore),
		ConsistencyScore: round3(consistency),
		MonthsAnalyzed:   len(values),
	}, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
