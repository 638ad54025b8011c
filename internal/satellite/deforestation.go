// internal/satellite/deforestation.go
package satellite

import (
	"fmt"
	"math"

	"agroscore/internal/common/errors"
	"agroscore/internal/models"
)

// Rule thresholds for year-over-year vegetation loss. Rules are evaluated in
// order; the first match wins.
const (
	highLossThreshold   = -0.20
	mediumLossThreshold = -0.15
	lowLossThreshold    = -0.10

	highBaselineNDVI   = 0.5
	mediumBaselineNDVI = 0.4
)

// DetectClearing compares a historical baseline sample against a recent
// sample and classifies the vegetation loss, if any. Both samples are
// required; missing change-detection data is a hard error, never a silent
// zero.
func DetectClearing(historical, recent *models.VegetationSample) (*models.DeforestationAssessment, error) {
	if historical == nil || recent == nil {
		missing := "historical baseline"
		if historical != nil {
			missing = "recent sample"
		}
		return nil, errors.NewDeforestationDataMissingError(missing)
	}

	change := recent.NDVI - historical.NDVI
	assessment := &models.DeforestationAssessment{
		NDVIHistorical: round3(historical.NDVI),
		NDVIRecent:     round3(recent.NDVI),
		Change:         round3(change),
		PeriodLabel:    fmt.Sprintf("%s to %s", historical.PeriodLabel, recent.PeriodLabel),
	}

	loss := math.Abs(change)
	switch {
	case historical.NDVI > highBaselineNDVI && change < highLossThreshold:
		assessment.RiskLevel = models.DeforestationHigh
		assessment.Detected = true
		assessment.Score = round3(math.Min(1.0, loss*2.0))
	case historical.NDVI > mediumBaselineNDVI && change < mediumLossThreshold:
		assessment.RiskLevel = models.DeforestationMedium
		assessment.Detected = true
		assessment.Score = round3(math.Min(0.7, loss*1.5))
	case change < lowLossThreshold:
		// Worth flagging but below the detection bar.
		assessment.RiskLevel = models.DeforestationLow
		assessment.Detected = false
		assessment.Score = round3(math.Min(0.4, loss))
	default:
		assessment.RiskLevel = models.DeforestationNone
		assessment.Detected = false
		assessment.Score = 0
	}

	return assessment, nil
}
