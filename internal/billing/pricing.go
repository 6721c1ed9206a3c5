package billing

import "funnel-copilot/internal/models"

// Credit prices per paid operation.
const (
	CostDiagnosis      int64 = 500
	CostAdvancedPlan   int64 = 100
	CostWeeklyAnalysis int64 = 100
	CostAdCreative     int64 = 50
	CostChatTurn       int64 = 1
	CostSectionDetail  int64 = 5
)

// Cost returns the price of a paid operation, or 0 for operations that
// are not metered.
func Cost(operation string) int64 {
	switch operation {
	case models.OperationDiagnosis:
		return CostDiagnosis
	case models.OperationAdvancedPlan:
		return CostAdvancedPlan
	case models.OperationWeeklyAnalysis:
		return CostWeeklyAnalysis
	case models.OperationAdCreative:
		return CostAdCreative
	case models.OperationChatTurn:
		return CostChatTurn
	case models.OperationSectionDetail:
		return CostSectionDetail
	default:
		return 0
	}
}
