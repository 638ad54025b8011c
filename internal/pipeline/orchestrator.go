// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	agroerrors "agroscore/internal/common/errors"
	"agroscore/internal/common/logger"
	"agroscore/internal/common/metrics"
	"agroscore/internal/common/observability"
	"agroscore/internal/models"
	"agroscore/internal/satellite"
	"agroscore/internal/scoring"
)

// Composite blend weights for the Risk Analyst stage.
const (
	weightVegetation     = 0.40
	weightClimate        = 0.30
	weightSustainability = 0.30
)

// Decision thresholds on the composite score.
const (
	approveThreshold     = 0.6
	conditionalThreshold = 0.4
)

const (
	confidenceFloor = 0.60
	confidenceCeil  = 0.95
	// Slope chosen so the farthest possible composite (distance 0.4 from a
	// threshold) lands exactly on the ceiling.
	confidenceSlope = 0.875
)

// healthyNDVI is the NDVI at which vegetation is considered fully healthy.
const healthyNDVI = 0.8

// neutralRisk is the stand-in risk when a collaborator is unreachable.
const neutralRisk = 0.5

func init() {
	sum := weightVegetation + weightClimate + weightSustainability
	if math.Abs(sum-1.0) > 1e-9 {
		panic(fmt.Sprintf("composite weights sum to %.4f, want 1.0", sum))
	}
}

// ImagerySource supplies vegetation observations for a farm region.
type ImagerySource interface {
	// MonthlySeries returns up to months chronological NDVI samples.
	MonthlySeries(ctx context.Context, region models.Region, months int) (*models.TemporalSeries, error)
	// ChangePair returns a historical baseline sample from yearsBack years
	// ago and a recent sample for change detection.
	ChangePair(ctx context.Context, region models.Region, yearsBack int) (historical, recent *models.VegetationSample, err error)
}

// WeatherSource supplies the climate risk summary for a farm region.
type WeatherSource interface {
	Climate(ctx context.Context, region models.Region) (*models.ClimateSignal, error)
}

// Orchestrator drives the three-stage assessment workflow: the Field Scout
// gathers raw observations, the Risk Analyst scores them, and the Loan
// Officer issues the decision. One Orchestrator serves many concurrent runs.
type Orchestrator struct {
	imagery    ImagerySource
	weather    WeatherSource
	classifier scoring.PurposeClassifier
	tracer     *observability.Tracer
	log        logger.Logger

	lookbackMonths int
	baselineYears  int
}

// Option tunes an Orchestrator.
type Option func(*Orchestrator)

// WithTracer attaches distributed tracing to the stage boundaries.
func WithTracer(t *observability.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithClassifier overrides the default loan purpose classifier.
func WithClassifier(c scoring.PurposeClassifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

// WithHistoryWindow overrides the default lookback and baseline windows.
func WithHistoryWindow(lookbackMonths, baselineYears int) Option {
	return func(o *Orchestrator) {
		o.lookbackMonths = lookbackMonths
		o.baselineYears = baselineYears
	}
}

func NewOrchestrator(imagery ImagerySource, weather WeatherSource, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		imagery:        imagery,
		weather:        weather,
		classifier:     scoring.NewKeywordClassifier(),
		log:            log,
		lookbackMonths: 6,
		baselineYears:  2,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full assessment. Collaborator outages degrade the result
// with conservative neutral values and are noted in the payload; only an
// invalid request fails the run outright.
func (o *Orchestrator) Run(ctx context.Context, req *models.AssessmentRequest) (*models.DecisionPayload, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment request: %w", err)
	}

	log := o.log.WithFields(map[string]interface{}{"request_id": req.RequestID})
	state := newRunState()

	o.runStage(ctx, state, StageFieldScouting, "field_scout", func(ctx context.Context) {
		o.fieldScout(ctx, state, req, log)
	})
	o.runStage(ctx, state, StageRiskAnalyzing, "risk_analyst", func(ctx context.Context) {
		o.riskAnalyst(state, log)
	})
	o.runStage(ctx, state, StageLoanDeciding, "loan_officer", func(ctx context.Context) {
		o.loanOfficer(state, req, log)
	})
	state.advance(StageDone)

	payload := &models.DecisionPayload{
		RequestID:      req.RequestID,
		Sustainability: *state.sustainability,
		LoanRisk:       *state.loanRisk,
		Decision:       *state.decision,
		RiskScores:     *state.riskScores,
		AgentTrace:     state.trace,
		Degraded:       state.degraded,
		GeneratedAt:    time.Now().UTC(),
	}

	metrics.PipelineRuns.WithLabelValues(string(state.decision.Label)).Inc()
	log.Info("assessment complete", map[string]interface{}{
		"decision":        state.decision.Label,
		"confidence":      state.decision.Confidence,
		"composite_score": state.riskScores.CompositeScore,
		"degraded":        len(state.degraded),
	})
	return payload, nil
}

func (o *Orchestrator) runStage(ctx context.Context, state *runState, stage Stage, agent string, fn func(context.Context)) {
	state.advance(stage)
	if o.tracer != nil {
		stageCtx, span := o.tracer.StartStage(ctx, string(stage))
		defer span.End()
		ctx = stageCtx
	}
	start := time.Now()
	fn(ctx)
	metrics.PipelineStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	state.recordAgent(agent)
}

// fieldScout gathers the raw satellite and weather observations. The two
// collaborators are independent and are queried concurrently.
func (o *Orchestrator) fieldScout(ctx context.Context, state *runState, req *models.AssessmentRequest, log logger.Logger) {
	region := req.Region()
	lookback := req.LookbackMonths
	if lookback <= 0 {
		lookback = o.lookbackMonths
	}
	baseline := req.BaselineYears
	if baseline <= 0 {
		baseline = o.baselineYears
	}

	var (
		wg sync.WaitGroup

		series     *models.TemporalSeries
		seriesErr  error
		historical *models.VegetationSample
		recent     *models.VegetationSample
		pairErr    error
		climate    *models.ClimateSignal
		climateErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		series, seriesErr = o.imagery.MonthlySeries(ctx, region, lookback)
		if seriesErr == nil {
			historical, recent, pairErr = o.imagery.ChangePair(ctx, region, baseline)
		} else {
			pairErr = seriesErr
		}
	}()
	go func() {
		defer wg.Done()
		climate, climateErr = o.weather.Climate(ctx, region)
	}()
	wg.Wait()

	metricsOut, err := analyzeSeriesOrFallback(series, seriesErr, lookback)
	if err != nil {
		metrics.PipelineStageFailures.WithLabelValues(string(StageFieldScouting), "IMAGERY_FETCH_FAILED").Inc()
		log.WithError(err).Warn("vegetation series unavailable, using neutral fallback", nil)
		state.noteDegraded("satellite: vegetation series unavailable, neutral trend assumed")
	}
	state.setMetrics(metricsOut)

	deforestation, err := satellite.DetectClearing(historical, recent)
	if err != nil || pairErr != nil {
		if pairErr != nil {
			err = pairErr
		}
		metrics.PipelineStageFailures.WithLabelValues(string(StageFieldScouting), "DEFORESTATION_DATA_MISSING").Inc()
		log.WithError(err).Warn("change detection unavailable, assuming no clearing", nil)
		state.noteDegraded("satellite: change detection unavailable, no clearing assumed")
		deforestation = &models.DeforestationAssessment{
			RiskLevel:   models.DeforestationNone,
			PeriodLabel: "unavailable",
		}
	}
	state.setDeforestation(deforestation)

	if climateErr == nil && climate != nil && !climateInRange(climate) {
		climateErr = agroerrors.NewWeatherFetchFailedError(fmt.Errorf(
			"risk scores out of range: weather=%.3f drought=%.3f",
			climate.WeatherRiskScore, climate.DroughtRiskScore))
	}
	if climateErr != nil {
		metrics.PipelineStageFailures.WithLabelValues(string(StageFieldScouting), "WEATHER_FETCH_FAILED").Inc()
		log.WithError(climateErr).Warn("weather unavailable, using neutral risk", nil)
		state.noteDegraded("weather: provider unavailable, neutral risk assumed")
		climate = &models.ClimateSignal{
			WeatherRiskScore: neutralRisk,
			DroughtRiskScore: neutralRisk,
		}
	}
	state.setClimate(climate)
}

// climateInRange checks that both risk scores are usable [0,1] values.
// An out-of-range signal is treated like a failed fetch: the scorer panics
// on bad component inputs, so it must never see them.
func climateInRange(c *models.ClimateSignal) bool {
	return c.WeatherRiskScore >= 0 && c.WeatherRiskScore <= 1 &&
		c.DroughtRiskScore >= 0 && c.DroughtRiskScore <= 1
}

// analyzeSeriesOrFallback runs the temporal analyzer and substitutes a
// neutral degraded result when the series is missing or too short.
func analyzeSeriesOrFallback(series *models.TemporalSeries, fetchErr error, lookback int) (*models.TemporalMetrics, error) {
	if fetchErr == nil {
		m, err := satellite.AnalyzeSeries(series)
		if err == nil {
			return m, nil
		}
		fetchErr = err
	}

	trend := make([]float64, lookback)
	for i := range trend {
		trend[i] = neutralRisk
	}
	return &models.TemporalMetrics{
		Trend:            trend,
		Current:          neutralRisk,
		Average:          neutralRisk,
		TrendDirection:   models.TrendStable,
		TrendScore:       0.6,
		ConsistencyScore: neutralRisk,
		MonthsAnalyzed:   0,
		Degraded:         true,
	}, fetchErr
}

// riskAnalyst scores the Field Scout observations: the detailed
// sustainability composite plus the coarse blend the decision reads.
func (o *Orchestrator) riskAnalyst(state *runState, log logger.Logger) {
	m := state.metrics
	climate := state.climate

	state.setSustainability(scoring.ScoreSustainability(scoring.SustainabilityInputs{
		TrendScore:        m.TrendScore,
		ConsistencyScore:  m.ConsistencyScore,
		DeforestationRisk: state.deforestation.Score,
		WeatherRisk:       climate.WeatherRiskScore,
	}))

	vegetation := 0.0
	if m.Current > 0 {
		vegetation = math.Min(1.0, m.Current/healthyNDVI)
	}
	climateScore := 1.0 - climate.WeatherRiskScore
	sustainabilityScore := 1.0 - climate.DroughtRiskScore

	composite := vegetation*weightVegetation +
		climateScore*weightClimate +
		sustainabilityScore*weightSustainability

	state.setRiskScores(&models.RiskScores{
		VegetationScore:     round3(vegetation),
		ClimateScore:        round3(climateScore),
		SustainabilityScore: round3(sustainabilityScore),
		CompositeScore:      round3(composite),
		RiskLevel:           riskLevelFor(composite),
	})

	log.Info("risk analysis complete", map[string]interface{}{
		"composite_score":      round3(composite),
		"risk_level":           riskLevelFor(composite),
		"sustainability_grade": state.sustainability.Grade,
	})
}

func riskLevelFor(composite float64) string {
	switch {
	case composite > approveThreshold:
		return "LOW"
	case composite > conditionalThreshold:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

// loanOfficer turns the risk analysis into the final lending decision.
func (o *Orchestrator) loanOfficer(state *runState, req *models.AssessmentRequest, log logger.Logger) {
	state.setLoanRisk(scoring.CalculateLoanRisk(state.sustainability, req.LoanAmount, req.Purpose, o.classifier))

	composite := state.riskScores.CompositeScore
	decision := &models.Decision{
		Confidence: confidenceFor(composite),
	}

	switch {
	case composite >= approveThreshold:
		decision.Label = models.DecisionApproved
		decision.Reasoning = fmt.Sprintf(
			"Loan approved: strong vegetation health and a low overall risk profile (composite score %.2f) support the stated purpose %q.",
			composite, req.Purpose)
		decision.Recommendations = []string{}
		decision.CertificateEligible = true
	case composite >= conditionalThreshold:
		decision.Label = models.DecisionConditional
		decision.Reasoning = fmt.Sprintf(
			"Conditional approval: moderate vegetation health and some climate risk (composite score %.2f) require mitigation and quarterly progress reporting.",
			composite)
		decision.Recommendations = []string{
			"Implement drip irrigation to reduce water dependency",
			"Consider crop diversification for risk mitigation",
			"Install weather monitoring equipment",
			"Submit quarterly vegetation health reports",
		}
		decision.CertificateEligible = true
	default:
		decision.Label = models.DecisionRejected
		decision.Reasoning = fmt.Sprintf(
			"Loan rejected: vegetation health below the acceptable threshold and significant climate risk (composite score %.2f). Reapply after a minimum six month improvement period.",
			composite)
		decision.Recommendations = []string{
			"Improve soil health through composting",
			"Implement water conservation practices",
			"Consider drought-resistant crop varieties",
			"Apply for agricultural extension support",
			"Reapply after 6 months with improved metrics",
		}
		decision.CertificateEligible = false
	}

	state.setDecision(decision)
	log.Info("decision issued", map[string]interface{}{
		"decision":   decision.Label,
		"confidence": decision.Confidence,
	})
}

// confidenceFor grows with the composite's distance from the nearer decision
// threshold: borderline scores yield low confidence, clear-cut scores high.
func confidenceFor(composite float64) float64 {
	distance := math.Min(
		math.Abs(composite-approveThreshold),
		math.Abs(composite-conditionalThreshold))
	confidence := confidenceFloor + confidenceSlope*distance
	return round3(math.Max(confidenceFloor, math.Min(confidenceCeil, confidence)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
