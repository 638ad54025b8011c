// internal/scoring/sustainability.go
package scoring

import (
	"fmt"
	"math"

	"agroscore/internal/models"
)

// Component weights for the composite sustainability score. They must sum
// to exactly 1.0; a bad weight table is a deployment error, not a runtime
// condition.
const (
	weightTrend         = 0.30
	weightConsistency   = 0.20
	weightDeforestation = 0.25
	weightClimate       = 0.25
)

// Grade band floors on the 0..100 scale.
const (
	gradeAFloor = 80
	gradeBFloor = 65
	gradeCFloor = 50
	gradeDFloor = 35
)

func init() {
	sum := weightTrend + weightConsistency + weightDeforestation + weightClimate
	if math.Abs(sum-1.0) > 1e-9 {
		panic(fmt.Sprintf("sustainability weights sum to %.4f, want 1.0", sum))
	}
}

// SustainabilityInputs are the normalized 0..1 signals feeding the composite
// score. Deforestation and weather risk are risk signals; the scorer inverts
// them before weighting.
type SustainabilityInputs struct {
	TrendScore        float64
	ConsistencyScore  float64
	DeforestationRisk float64
	WeatherRisk       float64
}

// ScoreSustainability blends the four component signals into a 0..100
// composite with a letter grade and plain-language factor lists. Panics if
// any input falls outside [0,1]; upstream analyzers guarantee the range.
func ScoreSustainability(in SustainabilityInputs) *models.SustainabilityScore {
	mustBeUnit("trend_score", in.TrendScore)
	mustBeUnit("consistency_score", in.ConsistencyScore)
	mustBeUnit("deforestation_risk", in.DeforestationRisk)
	mustBeUnit("weather_risk", in.WeatherRisk)

	// Each component is scaled to an integer 0..100 before blending so the
	// reported component table and the overall score use the same numbers.
	components := map[string]int{
		"vegetation_trend":     scale(in.TrendScore),
		"farming_consistency":  scale(in.ConsistencyScore),
		"deforestation_safety": scale(1.0 - in.DeforestationRisk),
		"climate_resilience":   scale(1.0 - in.WeatherRisk),
	}

	overall := int(math.Round(
		float64(components["vegetation_trend"])*weightTrend +
			float64(components["farming_consistency"])*weightConsistency +
			float64(components["deforestation_safety"])*weightDeforestation +
			float64(components["climate_resilience"])*weightClimate))

	return &models.SustainabilityScore{
		Overall:         overall,
		Grade:           gradeFor(overall),
		Interpretation:  interpretationFor(overall),
		ComponentScores: components,
		RiskFactors:     riskFactors(components),
		PositiveFactors: positiveFactors(components),
	}
}

func gradeFor(overall int) models.Grade {
	switch {
	case overall >= gradeAFloor:
		return models.GradeA
	case overall >= gradeBFloor:
		return models.GradeB
	case overall >= gradeCFloor:
		return models.GradeC
	case overall >= gradeDFloor:
		return models.GradeD
	default:
		return models.GradeF
	}
}

func interpretationFor(overall int) string {
	switch {
	case overall >= gradeAFloor:
		return "Excellent sustainability practices"
	case overall >= gradeBFloor:
		return "Good sustainability with minor concerns"
	case overall >= gradeCFloor:
		return "Average sustainability, improvements possible"
	case overall >= gradeDFloor:
		return "Below average, significant concerns"
	default:
		return "Poor sustainability, high risk"
	}
}

func riskFactors(components map[string]int) []string {
	factors := []string{}
	if components["vegetation_trend"] < 40 {
		factors = append(factors, "Declining vegetation health over time")
	}
	if components["farming_consistency"] < 40 {
		factors = append(factors, "Inconsistent farming patterns")
	}
	if components["deforestation_safety"] < 50 {
		factors = append(factors, "Potential recent deforestation detected")
	}
	if components["climate_resilience"] < 40 {
		factors = append(factors, "High climate/weather risk exposure")
	}
	return factors
}

func positiveFactors(components map[string]int) []string {
	factors := []string{}
	if components["vegetation_trend"] > 70 {
		factors = append(factors, "Improving vegetation health trend")
	}
	if components["farming_consistency"] > 70 {
		factors = append(factors, "Consistent and stable land management")
	}
	if components["deforestation_safety"] > 80 {
		factors = append(factors, "No signs of recent deforestation")
	}
	if components["climate_resilience"] > 70 {
		factors = append(factors, "Favorable climate conditions")
	}
	return factors
}

// scale converts a 0..1 signal to the 0..100 integer scale.
func scale(v float64) int {
	return int(math.Round(v * 100))
}

func mustBeUnit(name string, v float64) {
	if v < 0 || v > 1 || math.IsNaN(v) {
		panic(fmt.Sprintf("component %s out of range: %v", name, v))
	}
}
