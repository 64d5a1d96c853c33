package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/scrutor/internal/models"
)

func TestIsBanking(t *testing.T) {
	tests := []struct {
		name   string
		fields models.Fields
		want   bool
	}{
		{name: "manufacturer", fields: models.Fields{models.Revenue: 100, models.FinanceCosts: 5}, want: false},
		{name: "one signal", fields: models.Fields{models.InterestIncome: 100}, want: false},
		{name: "deposits and advances", fields: models.Fields{models.Deposits: 900, models.Advances: 700}, want: true},
		{name: "interest pair", fields: models.Fields{models.InterestIncome: 100, models.InterestExpense: 60}, want: true},
		{name: "zeros do not count", fields: models.Fields{models.Deposits: 0, models.Advances: 0, models.InterestIncome: 10}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBanking(FromFields(tt.fields)))
		})
	}
}

func TestAnyBanking(t *testing.T) {
	bank := &models.NormalizedStatement{Fields: models.Fields{models.Deposits: 1, models.Advances: 1}}
	plain := &models.NormalizedStatement{Fields: models.Fields{models.Revenue: 1}}

	assert.True(t, AnyBanking([]*models.NormalizedStatement{plain, bank}))
	assert.False(t, AnyBanking([]*models.NormalizedStatement{plain, nil}))
}
