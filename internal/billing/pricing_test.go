package billing

import (
	"testing"

	"funnel-copilot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	tests := []struct {
		operation string
		want      int64
	}{
		{models.OperationDiagnosis, 500},
		{models.OperationAdvancedPlan, 100},
		{models.OperationWeeklyAnalysis, 100},
		{models.OperationAdCreative, 50},
		{models.OperationChatTurn, 1},
		{models.OperationSectionDetail, 5},
		{models.OperationTopUp, 0},
		{models.OperationRefund, 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			assert.Equal(t, tt.want, Cost(tt.operation))
		})
	}
}
