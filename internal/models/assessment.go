// internal/models/assessment.go
package models

import (
	"fmt"
	"time"
)

// Region is the bounding region for one farm parcel: a point with a radius,
// or an explicit polygon of [lon, lat] vertices when the farm boundary is
// known. The polygon wins when it has at least 3 vertices.
type Region struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	RadiusKm  float64     `json:"radius_km,omitempty"`
	Polygon   [][]float64 `json:"polygon,omitempty"`
}

// VegetationSample is one monthly NDVI observation produced by the imagery
// collaborator. Immutable once produced.
type VegetationSample struct {
	PeriodLabel   string    `json:"period_label"`
	NDVI          float64   `json:"ndvi"`
	CloudCoverPct float64   `json:"cloud_cover_pct"`
	SampledAt     time.Time `json:"sampled_at"`
}

// TemporalSeries is a chronological sequence of monthly vegetation samples.
// Insertion order is time order.
type TemporalSeries struct {
	Region  Region             `json:"region"`
	Samples []VegetationSample `json:"samples"`
}

// Values returns the NDVI values in sample order.
func (s *TemporalSeries) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.NDVI
	}
	return out
}

// TrendDirection is the categorical summary of NDVI change over the series.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// TemporalMetrics annotates a TemporalSeries with trend and consistency
// metrics. Degraded marks results built from fewer than the minimum usable
// samples; downstream consumers must not treat those as a healthy trend.
type TemporalMetrics struct {
	Trend            []float64      `json:"ndvi_trend"`
	Current          float64        `json:"ndvi_current"`
	Average          float64        `json:"ndvi_average"`
	Change           float64        `json:"ndvi_change"`
	TrendDirection   TrendDirection `json:"trend_direction"`
	TrendScore       float64        `json:"trend_score"`
	ConsistencyScore float64        `json:"consistency_score"`
	MonthsAnalyzed   int            `json:"months_analyzed"`
	Degraded         bool           `json:"degraded"`
}

// DeforestationRiskLevel classifies detected land clearing.
type DeforestationRiskLevel string

const (
	DeforestationNone   DeforestationRiskLevel = "none"
	DeforestationLow    DeforestationRiskLevel = "low"
	DeforestationMedium DeforestationRiskLevel = "medium"
	DeforestationHigh   DeforestationRiskLevel = "high"
)

// DeforestationAssessment compares a historical vegetation baseline to a
// recent sample. Detected is true only for medium and high risk levels.
type DeforestationAssessment struct {
	Detected       bool                   `json:"detected"`
	RiskLevel      DeforestationRiskLevel `json:"risk_level"`
	Score          float64                `json:"score"`
	NDVIHistorical float64                `json:"ndvi_historical"`
	NDVIRecent     float64                `json:"ndvi_recent"`
	Change         float64                `json:"change"`
	PeriodLabel    string                 `json:"period_label"`
}

// ClimateSignal is the weather collaborator's read-only risk summary.
// Risk scores are 0-1, higher = more risk.
type ClimateSignal struct {
	WeatherRiskScore float64 `json:"weather_risk_score"`
	DroughtRiskScore float64 `json:"drought_risk_score"`
	RainfallTotalMM  float64 `json:"rainfall_total_mm,omitempty"`
	TemperatureMinC  float64 `json:"temperature_min_c,omitempty"`
	TemperatureMaxC  float64 `json:"temperature_max_c,omitempty"`
	FrostDays        int     `json:"frost_days,omitempty"`
}

// Grade is the letter grade assigned to a sustainability score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// SustainabilityScore is the weighted composite sustainability grade with
// explainable factor lists.
type SustainabilityScore struct {
	Overall         int            `json:"overall"`
	Grade           Grade          `json:"grade"`
	Interpretation  string         `json:"interpretation"`
	ComponentScores map[string]int `json:"component_scores"`
	RiskFactors     []string       `json:"risk_factors"`
	PositiveFactors []string       `json:"positive_factors"`
}

// ApprovalLikelihood is the loan approval tier. Lower risk scores map to
// higher likelihood.
type ApprovalLikelihood string

const (
	ApprovalHigh    ApprovalLikelihood = "high"
	ApprovalMedium  ApprovalLikelihood = "medium"
	ApprovalLow     ApprovalLikelihood = "low"
	ApprovalVeryLow ApprovalLikelihood = "very_low"
)

// LoanRiskAssessment holds the computed risk terms for one loan request.
type LoanRiskAssessment struct {
	RiskScore             int                `json:"risk_score"`
	ApprovalLikelihood    ApprovalLikelihood `json:"approval_likelihood"`
	SuggestedInterestRate float64            `json:"suggested_interest_rate"`
	MaxRecommendedAmount  float64            `json:"max_recommended_amount"`
	DecisionFactors       []string           `json:"decision_factors"`
}

// DecisionLabel is the final lending decision.
type DecisionLabel string

const (
	DecisionApproved    DecisionLabel = "APPROVED"
	DecisionConditional DecisionLabel = "CONDITIONAL"
	DecisionRejected    DecisionLabel = "REJECTED"
)

// Decision is the Loan Officer stage output.
type Decision struct {
	Label               DecisionLabel `json:"label"`
	Confidence          float64       `json:"confidence"`
	Reasoning           string        `json:"reasoning"`
	Recommendations     []string      `json:"recommendations"`
	CertificateEligible bool          `json:"certificate_eligible"`
}

// RiskScores is the Risk Analyst stage blend. CompositeScore here is a
// deliberately separate quantity from SustainabilityScore.Overall; the Loan
// Officer thresholds read this one.
type RiskScores struct {
	VegetationScore     float64 `json:"vegetation_score"`
	ClimateScore        float64 `json:"climate_score"`
	SustainabilityScore float64 `json:"sustainability_score"`
	CompositeScore      float64 `json:"composite_score"`
	RiskLevel           string  `json:"risk_level"`
}

// AssessmentRequest is the caller's input for one pipeline run.
type AssessmentRequest struct {
	RequestID      string      `json:"request_id"`
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
	RadiusKm       float64     `json:"radius_km,omitempty"`
	Polygon        [][]float64 `json:"polygon,omitempty"`
	LookbackMonths int         `json:"lookback_months,omitempty"`
	BaselineYears  int         `json:"baseline_years,omitempty"`
	LoanAmount     float64     `json:"loan_amount"`
	Purpose        string      `json:"purpose"`
}

// Region builds the bounding region for the request.
func (r *AssessmentRequest) Region() Region {
	return Region{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		RadiusKm:  r.RadiusKm,
		Polygon:   r.Polygon,
	}
}

// Validate rejects malformed requests before the pipeline starts. These are
// caller errors and are never silently defaulted.
func (r *AssessmentRequest) Validate() error {
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be positive, got %v", r.LoanAmount)
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", r.Longitude)
	}
	if r.Purpose == "" {
		return fmt.Errorf("purpose must not be empty")
	}
	return nil
}

// DecisionPayload is the structured result emitted per request, consumed by
// presentation and storage collaborators.
type DecisionPayload struct {
	RequestID      string              `json:"request_id"`
	Sustainability SustainabilityScore `json:"sustainability"`
	LoanRisk       LoanRiskAssessment  `json:"loan_risk"`
	Decision       Decision            `json:"decision"`
	RiskScores     RiskScores          `json:"risk_scores"`
	AgentTrace     []string            `json:"agent_trace"`
	Degraded       []string            `json:"degraded,omitempty"`
	GeneratedAt    time.Time           `json:"generated_at"`
}
