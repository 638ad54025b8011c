// internal/satellite/temporal_test.go
package satellite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroscore/internal/models"
)

func seriesFrom(values []float64) *models.TemporalSeries {
	s := &models.TemporalSeries{}
	for i, v := range values {
		s.Samples = append(s.Samples, models.VegetationSample{
			PeriodLabel: string(rune('A' + i)),
			NDVI:        v,
		})
	}
	return s
}

func TestAnalyzeSeries(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		wantDirection models.TrendDirection
		wantChange    float64
		wantScore     float64
	}{
		{
			name:          "steady improvement over six months",
			values:        []float64{0.40, 0.42, 0.45, 0.50, 0.55, 0.60},
			wantDirection: models.TrendImproving,
			wantChange:    0.20,
			wantScore:     0.90,
		},
		{
			name:          "sharp decline",
			values:        []float64{0.70, 0.60, 0.55, 0.45},
			wantDirection: models.TrendDeclining,
			wantChange:    -0.25,
			wantScore:     0.25,
		},
		{
			name:          "decline clamped at floor",
			values:        []float64{0.85, 0.60, 0.40, 0.15},
			wantDirection: models.TrendDeclining,
			wantChange:    -0.70,
			wantScore:     0.20,
		},
		{
			name:          "flat series is stable",
			values:        []float64{0.55, 0.56, 0.54, 0.55},
			wantDirection: models.TrendStable,
			wantChange:    0.00,
			wantScore:     0.60,
		},
		{
			name:          "small change inside dead band",
			values:        []float64{0.50, 0.52, 0.54},
			wantDirection: models.TrendStable,
			wantChange:    0.04,
			wantScore:     0.60,
		},
		{
			name:          "improvement clamped at ceiling",
			values:        []float64{0.20, 0.40, 0.60, 0.80},
			wantDirection: models.TrendImproving,
			wantChange:    0.60,
			wantScore:     1.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := AnalyzeSeries(seriesFrom(tt.values))
			require.NoError(t, err)

			assert.Equal(t, tt.wantDirection, metrics.TrendDirection)
			assert.InDelta(t, tt.wantChange, metrics.Change, 0.001)
			assert.InDelta(t, tt.wantScore, metrics.TrendScore, 0.001)
			assert.Equal(t, len(tt.values), metrics.MonthsAnalyzed)
			assert.GreaterOrEqual(t, metrics.ConsistencyScore, 0.0)
			assert.LessOrEqual(t, metrics.ConsistencyScore, 1.0)
			assert.GreaterOrEqual(t, metrics.TrendScore, 0.0)
			assert.LessOrEqual(t, metrics.TrendScore, 1.0)
		})
	}
}

func TestAnalyzeSeriesConsistency(t *testing.T) {
	flat, err := AnalyzeSeries(seriesFrom([]float64{0.50, 0.50, 0.50, 0.50}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, flat.ConsistencyScore, "zero variance should score perfect consistency")

	erratic, err := AnalyzeSeries(seriesFrom([]float64{0.10, 0.90, 0.10, 0.90}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, erratic.ConsistencyScore, "wild swings should floor at zero")

	moderate, err := AnalyzeSeries(seriesFrom([]float64{0.50, 0.55, 0.45, 0.52}))
	require.NoError(t, err)
	assert.Greater(t, moderate.ConsistencyScore, erratic.ConsistencyScore)
	assert.Less(t, moderate.ConsistencyScore, flat.ConsistencyScore)
}

func TestAnalyzeSeriesInsufficientSamples(t *testing.T) {
	tests := []struct {
		name   string
		series *models.TemporalSeries
	}{
		{"nil series", nil},
		{"empty series", seriesFrom(nil)},
		{"one sample", seriesFrom([]float64{0.5})},
		{"two samples", seriesFrom([]float64{0.5, 0.6})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := AnalyzeSeries(tt.series)
			require.Error(t, err)
			assert.Nil(t, metrics)
			assert.Contains(t, err.Error(), "INSUFFICIENT_SAMPLES")
		})
	}
}
