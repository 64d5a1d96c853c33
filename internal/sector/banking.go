// Package sector holds the single definition of sector membership used by
// every component with sector-specific behaviour.
package sector

import "github.com/ternarybob/scrutor/internal/models"

// Indicators are the banking signals present in a filing or statement.
type Indicators struct {
	InterestIncome    bool
	InterestExpense   bool
	NetInterestIncome bool
	Advances          bool
	Deposits          bool
}

// Count returns the number of signals present.
func (i Indicators) Count() int {
	n := 0
	for _, b := range []bool{i.InterestIncome, i.InterestExpense, i.NetInterestIncome, i.Advances, i.Deposits} {
		if b {
			n++
		}
	}
	return n
}

// IsBanking classifies an entity as a bank when at least two of the five
// banking signals are present.
func IsBanking(ind Indicators) bool {
	return ind.Count() >= 2
}

// FromFields reads the indicators from canonical fields. Zero values do not
// count as present.
func FromFields(f models.Fields) Indicators {
	return Indicators{
		InterestIncome:    f.NonZero(models.InterestIncome),
		InterestExpense:   f.NonZero(models.InterestExpense),
		NetInterestIncome: f.NonZero(models.NetInterestIncome),
		Advances:          f.NonZero(models.Advances),
		Deposits:          f.NonZero(models.Deposits),
	}
}

// StatementIsBanking classifies a statement from its fields.
func StatementIsBanking(s *models.NormalizedStatement) bool {
	if s == nil {
		return false
	}
	return IsBanking(FromFields(s.Fields))
}

// AnyBanking reports whether any statement in a series is a bank. A series
// is treated as one entity, so one classified period is enough.
func AnyBanking(stmts []*models.NormalizedStatement) bool {
	for _, s := range stmts {
		if StatementIsBanking(s) {
			return true
		}
	}
	return false
}
