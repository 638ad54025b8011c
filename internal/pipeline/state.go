// internal/pipeline/state.go
package pipeline

import (
	"fmt"

	"agroscore/internal/models"
)

// Stage names the pipeline phases visited by one assessment run. A run only
// moves forward; completed stage output is never rewritten.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageFieldScouting Stage = "field_scouting"
	StageRiskAnalyzing Stage = "risk_analyzing"
	StageLoanDeciding  Stage = "loan_deciding"
	StageDone          Stage = "done"
)

var stageOrder = map[Stage]int{
	StageIdle:          0,
	StageFieldScouting: 1,
	StageRiskAnalyzing: 2,
	StageLoanDeciding:  3,
	StageDone:          4,
}

// runState accumulates one run's stage outputs. Fields are write-once;
// an attempted overwrite is a programming error in a stage and panics.
type runState struct {
	stage Stage

	metrics        *models.TemporalMetrics
	deforestation  *models.DeforestationAssessment
	climate        *models.ClimateSignal
	sustainability *models.SustainabilityScore
	riskScores     *models.RiskScores
	loanRisk       *models.LoanRiskAssessment
	decision       *models.Decision

	trace    []string
	degraded []string
}

func newRunState() *runState {
	return &runState{stage: StageIdle}
}

// advance moves the run to the next stage. Skipping or revisiting stages
// panics; the orchestrator drives stages in a fixed order.
func (s *runState) advance(next Stage) {
	if stageOrder[next] != stageOrder[s.stage]+1 {
		panic(fmt.Sprintf("illegal stage transition %s -> %s", s.stage, next))
	}
	s.stage = next
}

func (s *runState) recordAgent(agent string) {
	s.trace = append(s.trace, agent)
}

func (s *runState) noteDegraded(note string) {
	s.degraded = append(s.degraded, note)
}

func (s *runState) setMetrics(m *models.TemporalMetrics) {
	mustBeUnset("temporal metrics", s.metrics == nil)
	s.metrics = m
}

func (s *runState) setDeforestation(d *models.DeforestationAssessment) {
	mustBeUnset("deforestation assessment", s.deforestation == nil)
	s.deforestation = d
}

func (s *runState) setClimate(c *models.ClimateSignal) {
	mustBeUnset("climate signal", s.climate == nil)
	s.climate = c
}

func (s *runState) setSustainability(sc *models.SustainabilityScore) {
	mustBeUnset("sustainability score", s.sustainability == nil)
	s.sustainability = sc
}

func (s *runState) setRiskScores(r *models.RiskScores) {
	mustBeUnset("risk scores", s.riskScores == nil)
	s.riskScores = r
}

func (s *runState) setLoanRisk(l *models.LoanRiskAssessment) {
	mustBeUnset("loan risk assessment", s.loanRisk == nil)
	s.loanRisk = l
}

func (s *runState) setDecision(d *models.Decision) {
	mustBeUnset("decision", s.decision == nil)
	s.decision = d
}

func mustBeUnset(field string, unset bool) {
	if !unset {
		panic(fmt.Sprintf("stage output %q already written", field))
	}
}
