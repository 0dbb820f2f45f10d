package partition

import (
	"context"
	"time"

	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
)

// Options controls one split invocation.
type Options struct {
	Sizes    SizeSpec
	Balanced bool
	Seed     int64
}

// DefaultOptions returns sizes (0.8, 0.2), the greedy policy and seed 0.
func DefaultOptions() Options {
	return Options{Sizes: DefaultSizes()}
}

// Splitter indexes molecules by position and allocates the resulting groups.
type Splitter struct {
	indexer *scaffold.Indexer
	logger  logging.Logger
}

// NewSplitter constructs a Splitter.  A nil logger is replaced by a nop one.
func NewSplitter(indexer *scaffold.Indexer, logger logging.Logger) *Splitter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Splitter{indexer: indexer, logger: logger}
}

// Split returns the train and test positions of mols.  The sizes are checked
// before any molecule is handed to the extractor.
func (s *Splitter) Split(ctx context.Context, mols []string, opts Options) (*Split[int], error) {
	if err := opts.Sizes.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	idx, err := s.indexer.ByPosition(ctx, mols)
	if err != nil {
		return nil, err
	}

	out, err := Allocate(idx.Groups(), opts.Sizes, opts.Balanced, opts.Seed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scaffold split completed",
		logging.String("policy", PolicyName(opts.Balanced)),
		logging.Int("molecules", len(mols)),
		logging.Int("scaffolds", idx.Len()),
		logging.Int("train", len(out.Train)),
		logging.Int("test", len(out.Test)),
		logging.Duration("elapsed", time.Since(start)))
	return out, nil
}

//Personal.AI order the ending
