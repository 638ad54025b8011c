// internal/workers/scoring/assess-loan/models.go
package assessloan

import "agroscore/internal/models"

type Input struct {
	RequestID      string      `json:"requestId"`
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
	RadiusKm       float64     `json:"radiusKm"`
	Polygon        [][]float64 `json:"polygon,omitempty"`
	LookbackMonths int         `json:"lookbackMonths"`
	BaselineYears  int         `json:"baselineYears"`
	LoanAmount     float64     `json:"loanAmount"`
	Purpose        string      `json:"purpose"`
}

// Output carries the full assessment payload plus flattened fields the BPMN
// gateways branch on.
type Output struct {
	Assessment          *models.DecisionPayload `json:"assessment"`
	Decision            string                  `json:"decision"`
	Confidence          float64                 `json:"confidence"`
	CertificateEligible bool                    `json:"certificateEligible"`
	Degraded            bool                    `json:"degraded"`
}
