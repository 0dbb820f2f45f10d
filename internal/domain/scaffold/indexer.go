package scaffold

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// Observer receives one callback per extractor call.  status is "ok" or
// "error".  The Prometheus split metrics implement it.
type Observer interface {
	ObserveExtraction(status string, elapsed time.Duration)
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithWorkers sets the number of concurrent extraction shards.  Values below
// one are treated as one.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n < 1 {
			n = 1
		}
		ix.workers = n
	}
}

// WithLogger sets the logger used for progress reports.
func WithLogger(l logging.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithProgressEvery emits a debug progress entry after every n extracted
// molecules.  Zero disables progress reporting.
func WithProgressEvery(n int) IndexerOption {
	return func(ix *Indexer) { ix.progressEvery = n }
}

// WithObserver attaches an extraction Observer.
func WithObserver(o Observer) IndexerOption {
	return func(ix *Indexer) { ix.observer = o }
}

// Indexer groups molecules by scaffold key.
type Indexer struct {
	extractor     Extractor
	workers       int
	progressEvery int
	logger        logging.Logger
	observer      Observer
}

// NewIndexer constructs an Indexer around extractor.  By default it runs one
// worker and does not report progress.
func NewIndexer(extractor Extractor, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		extractor: extractor,
		workers:   1,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// ByPosition groups molecule positions by scaffold.  Every position appears in
// exactly one group, duplicates included.
func (ix *Indexer) ByPosition(ctx context.Context, mols []string) (*Index[int], error) {
	keys, err := ix.extractAll(ctx, mols)
	if err != nil {
		return nil, err
	}
	out := newIndex[int](false)
	for i, k := range keys {
		out.add(k, i)
	}
	return out, nil
}

// ByValue groups molecule texts by scaffold.  Repeated SMILES collapse into a
// single member placed at its first occurrence.
func (ix *Indexer) ByValue(ctx context.Context, mols []string) (*Index[string], error) {
	keys, err := ix.extractAll(ctx, mols)
	if err != nil {
		return nil, err
	}
	out := newIndex[string](true)
	for i, k := range keys {
		out.add(k, mols[i])
	}
	return out, nil
}

// Borders returns the workers+1 shard boundaries that cut [0, n) into
// contiguous ranges of near-equal length; shard i covers
// [borders[i], borders[i+1]).
func Borders(n, workers int) []int {
	if workers < 1 {
		workers = 1
	}
	b := make([]int, workers+1)
	for i := range b {
		b[i] = i * n / workers
	}
	return b
}

// extractAll calls the extractor once per molecule and returns the keys in
// input order.  Shards keep running after another shard hits a bad molecule
// so that the lowest failing position is the one reported; only context
// cancellation stops every shard.
func (ix *Indexer) extractAll(ctx context.Context, mols []string) ([]Key, error) {
	n := len(mols)
	keys := make([]Key, n)
	if n == 0 {
		return keys, nil
	}

	workers := ix.workers
	if workers > n {
		workers = n
	}
	borders := Borders(n, workers)
	failures := make([]*ExtractionError, workers)

	var done atomic.Int64
	started := time.Now()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		lo, hi := borders[w], borders[w+1]
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				k, err := ix.extractOne(ctx, mols[i])
				if err != nil {
					failures[w] = &ExtractionError{Position: i, Molecule: mols[i], Cause: err}
					return nil
				}
				keys[i] = k
				ix.reportProgress(done.Add(1), n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var first *ExtractionError
	for _, f := range failures {
		if f != nil && (first == nil || f.Position < first.Position) {
			first = f
		}
	}
	if first != nil {
		return nil, errors.Wrap(first, errors.ErrCodeScaffoldExtractionFailed, "scaffold extraction failed").
			WithDetailf("position=%d", first.Position)
	}

	ix.logger.Debug("scaffold extraction finished",
		logging.Int("molecules", n),
		logging.Int("workers", workers),
		logging.Duration("elapsed", time.Since(started)))
	return keys, nil
}

func (ix *Indexer) extractOne(ctx context.Context, mol string) (Key, error) {
	start := time.Now()
	k, err := ix.extractor.Scaffold(ctx, mol)
	if ix.observer != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		ix.observer.ObserveExtraction(status, time.Since(start))
	}
	return k, err
}

func (ix *Indexer) reportProgress(done int64, total int) {
	if ix.progressEvery <= 0 || done%int64(ix.progressEvery) != 0 {
		return
	}
	ix.logger.Debug("scaffold extraction progress",
		logging.Int64("done", done),
		logging.Int("total", total))
}

//Personal.AI order the ending
