package costbasis

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/basis/internal/model"
	"github.com/cleared-dev/basis/internal/position"
)

// LedgerWriter persists snapshot chains.
type LedgerWriter interface {
	Append(ctx context.Context, snaps []model.CostBasisSnapshot) error
}

// BuildOptions configures Build.
type BuildOptions struct {
	Ignore   map[string]bool // symbols excluded from cost-basis computation
	Sequence *Sequence       // defaults to a sequence starting at 0
	Log      logrus.FieldLogger
}

// Result summarizes a Build run.
type Result struct {
	Groups    int
	Snapshots int
	Ignored   int   // records dropped because their symbol is ignored
	FirstSeq  int64 // first sequence number handed out
	NextSeq   int64 // sequence number the next run should start at
}

// Build groups records by position, replays each group and appends its
// snapshots to w. Groups are processed in symbol, account order so a run is
// fully deterministic.
func Build(ctx context.Context, records []model.TransactionRecord, w LedgerWriter, opts BuildOptions) (Result, error) {
	seq := opts.Sequence
	if seq == nil {
		seq = NewSequence(0)
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	groups := position.Group(records, opts.Ignore)
	res := Result{FirstSeq: seq.Peek()}
	for _, r := range records {
		if opts.Ignore[r.Symbol] {
			res.Ignored++
		}
	}

	for _, key := range groups.Keys() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snaps := Replay(groups[key], seq)
		if err := w.Append(ctx, snaps); err != nil {
			return res, fmt.Errorf("appending %s: %w", key, err)
		}
		last := snaps[len(snaps)-1]
		log.WithFields(logrus.Fields{
			"symbol":   key.Symbol,
			"account":  key.Account,
			"records":  len(snaps),
			"quantity": last.CurrentQuantity,
		}).Debug("replayed position")
		res.Groups++
		res.Snapshots += len(snaps)
	}

	res.NextSeq = seq.Peek()
	return res, nil
}
