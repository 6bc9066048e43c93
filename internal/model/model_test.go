package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       Status
	}{
		{"certain", 1.0, StatusAutoConfirmed},
		{"at auto-confirm", 0.95, StatusAutoConfirmed},
		{"just below auto-confirm", 0.949, StatusCategorized},
		{"at review flag", 0.60, StatusCategorized},
		{"below review flag", 0.59, StatusPendingReview},
		{"zero", 0, StatusPendingReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.confidence, 0.95, 0.60))
		})
	}
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, DirectionInflow, DirectionOf(decimal.RequireFromString("0.01")))
	assert.Equal(t, DirectionOutflow, DirectionOf(decimal.RequireFromString("-12.50")))
	assert.Equal(t, DirectionOutflow, DirectionOf(decimal.Zero))
}

func TestIsInflow(t *testing.T) {
	assert.True(t, Transaction{Amount: decimal.NewFromInt(5)}.IsInflow())
	assert.False(t, Transaction{Amount: decimal.NewFromInt(-5)}.IsInflow())
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, PriorityLow.Rank(), Priority("unknown").Rank())
}

func TestRecurring(t *testing.T) {
	assert.True(t, RecurringPattern{Frequency: FrequencyMonthly}.Recurring())
	assert.True(t, RecurringPattern{Frequency: FrequencyWeekly}.Recurring())
	assert.False(t, RecurringPattern{Frequency: FrequencyIrregular}.Recurring())
}
