// internal/workers/scoring/record-decision/models.go
package recorddecision

import "agroscore/internal/models"

type Input struct {
	Assessment  *models.DecisionPayload `json:"assessment"`
	Latitude    float64                 `json:"latitude"`
	Longitude   float64                 `json:"longitude"`
	LoanAmount  float64                 `json:"loanAmount"`
	Purpose     string                  `json:"purpose"`
	FarmerEmail string                  `json:"farmerEmail,omitempty"`
	FarmerPhone string                  `json:"farmerPhone,omitempty"`
}

type Output struct {
	DecisionID string `json:"decisionId"`
	Recorded   bool   `json:"recorded"`
	Indexed    bool   `json:"indexed"`
	Notified   bool   `json:"notified"`
}
