// Package costbasis replays a position's transactions into a chain of
// average-cost snapshots.
package costbasis

import (
	"sync/atomic"

	"github.com/cleared-dev/basis/internal/model"
)

// Epsilon is the tolerance under which a quantity counts as zero.
const Epsilon = 1.19e-7

// State is the running totals of one position.
type State struct {
	Quantity          float64
	AverageCostBasis  float64
	TotalFee          float64
	TotalRealizedGain float64
	TotalDividend     float64
}

// Book is the carried cost of the position.
func (s State) Book() float64 {
	return s.Quantity * s.AverageCostBasis
}

// Apply returns the state after r. The receiver is not modified.
//
// Only BUY and SELL move the quantity. BUY re-weights the average cost with
// the new capital; SELL keeps it and books the difference between carried
// cost and proceeds as realized gain. DIV adds the row's price, which holds
// the paid amount, to the dividend total. Every record accrues its fee,
// whatever its action. A quantity at or below Epsilon resets the average
// cost, and with it the book, to zero.
func (s State) Apply(r model.TransactionRecord) State {
	next := s
	switch r.Action {
	case model.ActionBuy:
		next.Quantity = s.Quantity + r.Quantity
		if next.Quantity > Epsilon {
			next.AverageCostBasis = (s.Book() + r.Quantity*r.Price) / next.Quantity
		} else {
			next.AverageCostBasis = 0
		}
	case model.ActionSell:
		next.Quantity = s.Quantity + r.Quantity
		if next.Quantity <= Epsilon {
			next.AverageCostBasis = 0
		}
		next.TotalRealizedGain += r.Quantity*s.AverageCostBasis - r.Quantity*r.Price
	case model.ActionDiv:
		next.TotalDividend += r.Price
	}
	next.TotalFee += r.Fee
	return next
}

// Snapshot freezes s as the ledger row produced by r.
func (s State) Snapshot(seq int64, r model.TransactionRecord) model.CostBasisSnapshot {
	return model.CostBasisSnapshot{
		SequenceNumber:           seq,
		RecordDate:               r.RecordDate,
		Symbol:                   r.Symbol,
		Account:                  r.Account,
		Action:                   r.Action,
		CurrentQuantity:          s.Quantity,
		CurrentAverageCostBasis:  s.AverageCostBasis,
		CurrentTotalFee:          s.TotalFee,
		CurrentTotalRealizedGain: s.TotalRealizedGain,
		CurrentTotalDividend:     s.TotalDividend,
	}
}

// Sequence hands out snapshot sequence numbers. It is shared by every group
// of a run and safe for concurrent use.
type Sequence struct {
	next atomic.Int64
}

// NewSequence returns a Sequence whose first number is start.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// Next returns the next number.
func (s *Sequence) Next() int64 {
	return s.next.Add(1) - 1
}

// Peek returns the number the next call to Next will return.
func (s *Sequence) Peek() int64 {
	return s.next.Load()
}

// Replay folds the records of one position, in order, starting from the
// zero state, and returns one snapshot per record.
func Replay(records []model.TransactionRecord, seq *Sequence) []model.CostBasisSnapshot {
	snaps := make([]model.CostBasisSnapshot, 0, len(records))
	var st State
	for _, r := range records {
		st = st.Apply(r)
		snaps = append(snaps, st.Snapshot(seq.Next(), r))
	}
	return snaps
}
