package model

import "time"

// CostBasisSnapshot is the state of one position after applying one record.
// Snapshots are created once during replay and never modified.
type CostBasisSnapshot struct {
	SequenceNumber           int64
	RecordDate               time.Time
	Symbol                   string
	Account                  string
	Action                   Action
	CurrentQuantity          float64
	CurrentAverageCostBasis  float64
	CurrentTotalFee          float64
	CurrentTotalRealizedGain float64
	CurrentTotalDividend     float64
}

// Key returns the position the snapshot belongs to.
func (s CostBasisSnapshot) Key() GroupKey {
	return GroupKey{Symbol: s.Symbol, Account: s.Account}
}

// BookValue is the carried cost of the position: quantity times average cost.
func (s CostBasisSnapshot) BookValue() float64 {
	return s.CurrentQuantity * s.CurrentAverageCostBasis
}
