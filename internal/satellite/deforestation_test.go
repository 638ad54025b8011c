// internal/satellite/deforestation_test.go
package satellite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroscore/internal/models"
)

func sample(label string, ndvi float64) *models.VegetationSample {
	return &models.VegetationSample{PeriodLabel: label, NDVI: ndvi}
}

func TestDetectClearing(t *testing.T) {
	tests := []struct {
		name         string
		historical   float64
		recent       float64
		wantLevel    models.DeforestationRiskLevel
		wantDetected bool
		wantScore    float64
	}{
		{
			name:         "major clearing from healthy baseline",
			historical:   0.65,
			recent:       0.35,
			wantLevel:    models.DeforestationHigh,
			wantDetected: true,
			wantScore:    0.60,
		},
		{
			name:         "high rule score capped at one",
			historical:   0.90,
			recent:       0.30,
			wantLevel:    models.DeforestationHigh,
			wantDetected: true,
			wantScore:    1.00,
		},
		{
			name:         "moderate loss from modest baseline",
			historical:   0.45,
			recent:       0.28,
			wantLevel:    models.DeforestationMedium,
			wantDetected: true,
			wantScore:    0.255,
		},
		{
			name:         "low baseline keeps large drop at low risk",
			historical:   0.35,
			recent:       0.15,
			wantLevel:    models.DeforestationLow,
			wantDetected: false,
			wantScore:    0.20,
		},
		{
			name:         "mild decline flagged but not detected",
			historical:   0.60,
			recent:       0.48,
			wantLevel:    models.DeforestationLow,
			wantDetected: false,
			wantScore:    0.12,
		},
		{
			name:         "stable vegetation",
			historical:   0.55,
			recent:       0.52,
			wantLevel:    models.DeforestationNone,
			wantDetected: false,
			wantScore:    0.00,
		},
		{
			name:         "regrowth",
			historical:   0.40,
			recent:       0.60,
			wantLevel:    models.DeforestationNone,
			wantDetected: false,
			wantScore:    0.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, err := DetectClearing(sample("2024", tt.historical), sample("2026", tt.recent))
			require.NoError(t, err)

			assert.Equal(t, tt.wantLevel, assessment.RiskLevel)
			assert.Equal(t, tt.wantDetected, assessment.Detected)
			assert.InDelta(t, tt.wantScore, assessment.Score, 0.001)
			assert.Equal(t, "2024 to 2026", assessment.PeriodLabel)
			assert.InDelta(t, tt.recent-tt.historical, assessment.Change, 0.001)
		})
	}
}

func TestDetectClearingRuleOrder(t *testing.T) {
	// A drop of 0.22 from a 0.55 baseline satisfies both the high and
	// medium conditions; the high rule must win.
	assessment, err := DetectClearing(sample("2024", 0.55), sample("2026", 0.33))
	require.NoError(t, err)
	assert.Equal(t, models.DeforestationHigh, assessment.RiskLevel)
	assert.True(t, assessment.Detected)
}

func TestDetectClearingDetectedImpliesElevatedRisk(t *testing.T) {
	for hist := 0.1; hist <= 0.9; hist += 0.1 {
		for rec := 0.1; rec <= 0.9; rec += 0.1 {
			assessment, err := DetectClearing(sample("h", hist), sample("r", rec))
			require.NoError(t, err)
			if assessment.Detected {
				assert.Contains(t,
					[]models.DeforestationRiskLevel{models.DeforestationMedium, models.DeforestationHigh},
					assessment.RiskLevel)
			}
			assert.GreaterOrEqual(t, assessment.Score, 0.0)
			assert.LessOrEqual(t, assessment.Score, 1.0)
		}
	}
}

func TestDetectClearingMissingData(t *testing.T) {
	tests := []struct {
		name       string
		historical *models.VegetationSample
		recent     *models.VegetationSample
	}{
		{"missing historical", nil, sample("2026", 0.5)},
		{"missing recent", sample("2024", 0.5), nil},
		{"both missing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, err := DetectClearing(tt.historical, tt.recent)
			require.Error(t, err)
			assert.Nil(t, assessment)
			assert.Contains(t, err.Error(), "DEFORESTATION_DATA_MISSING")
		})
	}
}
