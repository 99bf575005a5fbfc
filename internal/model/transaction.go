package model

import "time"

// Action is the kind of brokerage activity a record describes.
// The set is open: values outside the known constants are carried as-is.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionDiv   Action = "DIV"
	ActionFXFee Action = "FXFEE"
)

// Known reports whether a is one of the actions the cost-basis engine interprets.
func (a Action) Known() bool {
	switch a {
	case ActionBuy, ActionSell, ActionDiv, ActionFXFee:
		return true
	}
	return false
}

// TransactionRecord is one normalized row of the brokerage transaction log.
type TransactionRecord struct {
	RecordDate  time.Time // date only, UTC midnight
	Symbol      string
	Action      Action
	Quantity    float64 // negative for SELL
	Price       float64 // per-unit price; total amount for DIV rows
	Account     string
	Fee         float64
	FeeCurrency string // currency of the fee column the fee came from, empty when no fee
}

// Key returns the (symbol, account) position the record belongs to.
func (r TransactionRecord) Key() GroupKey {
	return GroupKey{Symbol: r.Symbol, Account: r.Account}
}

// GroupKey identifies a position: one symbol held in one account.
type GroupKey struct {
	Symbol  string
	Account string
}

func (k GroupKey) String() string {
	return k.Symbol + ":" + k.Account
}
