// internal/scoring/loan.go
package scoring

import (
	"fmt"
	"math"

	"agroscore/internal/models"
)

// Loan amount bands and their risk surcharges.
const (
	smallLoanCeiling  = 500.0
	mediumLoanCeiling = 2000.0
	largeLoanCeiling  = 5000.0

	mediumLoanSurcharge = 10
	largeLoanSurcharge  = 20
	jumboLoanSurcharge  = 30

	sustainablePurposeDiscount = 10
)

// Risk tier ceilings on the 0..100 risk scale.
const (
	highApprovalCeiling   = 30
	mediumApprovalCeiling = 50
	lowApprovalCeiling    = 70
)

const maxRecommendedCap = 10000.0

// CalculateLoanRisk turns a sustainability score into loan terms. Risk starts
// as the inverse of the sustainability score, then larger amounts add
// surcharges and a sustainable purpose earns a discount.
func CalculateLoanRisk(
	sustainability *models.SustainabilityScore,
	loanAmount float64,
	purpose string,
	classifier PurposeClassifier,
) *models.LoanRiskAssessment {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}

	risk := 100 - sustainability.Overall

	switch {
	case loanAmount <= smallLoanCeiling:
		// No surcharge for small loans.
	case loanAmount <= mediumLoanCeiling:
		risk += mediumLoanSurcharge
	case loanAmount <= largeLoanCeiling:
		risk += largeLoanSurcharge
	default:
		risk += jumboLoanSurcharge
	}

	sustainablePurpose := classifier.IsSustainable(purpose)
	if sustainablePurpose {
		risk -= sustainablePurposeDiscount
	}

	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}

	assessment := &models.LoanRiskAssessment{
		RiskScore:       risk,
		DecisionFactors: decisionFactors(sustainability, sustainablePurpose),
	}

	switch {
	case risk <= highApprovalCeiling:
		assessment.ApprovalLikelihood = models.ApprovalHigh
		assessment.SuggestedInterestRate = 0.08
		assessment.MaxRecommendedAmount = math.Min(loanAmount*2.0, maxRecommendedCap)
	case risk <= mediumApprovalCeiling:
		assessment.ApprovalLikelihood = models.ApprovalMedium
		assessment.SuggestedInterestRate = 0.12
		assessment.MaxRecommendedAmount = loanAmount * 1.2
	case risk <= lowApprovalCeiling:
		assessment.ApprovalLikelihood = models.ApprovalLow
		assessment.SuggestedInterestRate = 0.18
		assessment.MaxRecommendedAmount = loanAmount * 0.7
	default:
		assessment.ApprovalLikelihood = models.ApprovalVeryLow
		assessment.SuggestedInterestRate = 0.25
		assessment.MaxRecommendedAmount = loanAmount * 0.3
	}

	return assessment
}

func decisionFactors(sustainability *models.SustainabilityScore, sustainablePurpose bool) []string {
	factors := []string{
		fmt.Sprintf("Sustainability score: %d/100 (%s)", sustainability.Overall, sustainability.Grade),
	}
	for _, risk := range sustainability.RiskFactors {
		factors = append(factors, "⚠️ "+risk)
	}
	for _, positive := range sustainability.PositiveFactors {
		factors = append(factors, "✓ "+positive)
	}
	if sustainablePurpose {
		factors = append(factors, "✓ Loan purpose supports sustainable farming")
	}
	return factors
}
