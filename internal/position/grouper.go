package position

import (
	"cmp"
	"slices"

	"github.com/cleared-dev/basis/internal/model"
)

// Groups maps each position to its records in date order.
type Groups map[model.GroupKey][]model.TransactionRecord

// Group partitions records by (symbol, account), dropping every record whose
// symbol is in ignore. Records inside a group are sorted by date; records
// sharing a date keep their input order.
func Group(records []model.TransactionRecord, ignore map[string]bool) Groups {
	groups := make(Groups)
	for _, r := range records {
		if ignore[r.Symbol] {
			continue
		}
		k := r.Key()
		groups[k] = append(groups[k], r)
	}
	for _, recs := range groups {
		slices.SortStableFunc(recs, func(a, b model.TransactionRecord) int {
			return a.RecordDate.Compare(b.RecordDate)
		})
	}
	return groups
}

// Keys returns the group keys ordered by symbol, then account.
func (g Groups) Keys() []model.GroupKey {
	keys := make([]model.GroupKey, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b model.GroupKey) int {
		if c := cmp.Compare(a.Symbol, b.Symbol); c != 0 {
			return c
		}
		return cmp.Compare(a.Account, b.Account)
	})
	return keys
}

// IgnoreSet builds the lookup set used by Group.
func IgnoreSet(symbols []string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}
