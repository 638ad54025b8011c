// internal/scoring/sustainability_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agroscore/internal/models"
)

func TestScoreSustainability(t *testing.T) {
	tests := []struct {
		name        string
		in          SustainabilityInputs
		wantOverall int
		wantGrade   models.Grade
	}{
		{
			name: "strong farm across the board",
			in: SustainabilityInputs{
				TrendScore:        0.90,
				ConsistencyScore:  0.85,
				DeforestationRisk: 0.00,
				WeatherRisk:       0.20,
			},
			// 90*.30 + 85*.20 + 100*.25 + 80*.25 = 89
			wantOverall: 89,
			wantGrade:   models.GradeA,
		},
		{
			name: "middling farm",
			in: SustainabilityInputs{
				TrendScore:        0.60,
				ConsistencyScore:  0.55,
				DeforestationRisk: 0.30,
				WeatherRisk:       0.50,
			},
			// 60*.30 + 55*.20 + 70*.25 + 50*.25 = 59
			wantOverall: 59,
			wantGrade:   models.GradeC,
		},
		{
			name: "clearing and drought wreck the score",
			in: SustainabilityInputs{
				TrendScore:        0.20,
				ConsistencyScore:  0.30,
				DeforestationRisk: 0.90,
				WeatherRisk:       0.80,
			},
			// 20*.30 + 30*.20 + 10*.25 + 20*.25 = 19.5 -> 20
			wantOverall: 20,
			wantGrade:   models.GradeF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreSustainability(tt.in)
			assert.Equal(t, tt.wantOverall, score.Overall)
			assert.Equal(t, tt.wantGrade, score.Grade)
			assert.NotEmpty(t, score.Interpretation)
			assert.Len(t, score.ComponentScores, 4)
		})
	}
}

func TestScoreSustainabilityGradeBands(t *testing.T) {
	tests := []struct {
		overall   int
		wantGrade models.Grade
	}{
		{100, models.GradeA},
		{80, models.GradeA},
		{79, models.GradeB},
		{65, models.GradeB},
		{64, models.GradeC},
		{50, models.GradeC},
		{49, models.GradeD},
		{35, models.GradeD},
		{34, models.GradeF},
		{0, models.GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantGrade, gradeFor(tt.overall), "overall=%d", tt.overall)
	}
}

func TestScoreSustainabilityFactors(t *testing.T) {
	score := ScoreSustainability(SustainabilityInputs{
		TrendScore:        0.90,
		ConsistencyScore:  0.30,
		DeforestationRisk: 0.60,
		WeatherRisk:       0.10,
	})

	assert.Contains(t, score.PositiveFactors, "Improving vegetation health trend")
	assert.Contains(t, score.PositiveFactors, "Favorable climate conditions")
	assert.Contains(t, score.RiskFactors, "Inconsistent farming patterns")
	assert.Contains(t, score.RiskFactors, "Potential recent deforestation detected")

	assert.NotContains(t, score.RiskFactors, "Declining vegetation health over time")
	assert.NotContains(t, score.PositiveFactors, "No signs of recent deforestation")
}

func TestScoreSustainabilityDeforestationFactorThresholds(t *testing.T) {
	// Deforestation uses tighter factor thresholds than the other
	// components: risk below 50 safety, praise above 80.
	borderline := ScoreSustainability(SustainabilityInputs{
		TrendScore:        0.60,
		ConsistencyScore:  0.60,
		DeforestationRisk: 0.45, // safety 55: no factor either way
		WeatherRisk:       0.50,
	})
	assert.NotContains(t, borderline.RiskFactors, "Potential recent deforestation detected")
	assert.NotContains(t, borderline.PositiveFactors, "No signs of recent deforestation")

	clean := ScoreSustainability(SustainabilityInputs{
		TrendScore:        0.60,
		ConsistencyScore:  0.60,
		DeforestationRisk: 0.10, // safety 90
		WeatherRisk:       0.50,
	})
	assert.Contains(t, clean.PositiveFactors, "No signs of recent deforestation")
}

func TestScoreSustainabilityMonotonic(t *testing.T) {
	base := SustainabilityInputs{
		TrendScore:        0.50,
		ConsistencyScore:  0.50,
		DeforestationRisk: 0.50,
		WeatherRisk:       0.50,
	}
	baseline := ScoreSustainability(base).Overall

	better := base
	better.TrendScore = 0.80
	assert.Greater(t, ScoreSustainability(better).Overall, baseline)

	worse := base
	worse.WeatherRisk = 0.90
	assert.Less(t, ScoreSustainability(worse).Overall, baseline)
}

func TestScoreSustainabilityIdempotent(t *testing.T) {
	in := SustainabilityInputs{
		TrendScore:        0.73,
		ConsistencyScore:  0.61,
		DeforestationRisk: 0.22,
		WeatherRisk:       0.48,
	}
	first := ScoreSustainability(in)
	second := ScoreSustainability(in)
	assert.Equal(t, first, second)
}

func TestScoreSustainabilityPanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() {
		ScoreSustainability(SustainabilityInputs{TrendScore: 1.2, ConsistencyScore: 0.5, DeforestationRisk: 0.5, WeatherRisk: 0.5})
	})
	assert.Panics(t, func() {
		ScoreSustainability(SustainabilityInputs{TrendScore: 0.5, ConsistencyScore: 0.5, DeforestationRisk: -0.1, WeatherRisk: 0.5})
	})
}
