package scaffold_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// ringExtractor maps any molecule containing a ring-closure digit to the
// molecule text itself and everything else to the empty key.  Molecules
// starting with "!" fail.
func ringExtractor(calls *atomic.Int64) scaffold.ExtractorFunc {
	return func(_ context.Context, mol string) (scaffold.Key, error) {
		if calls != nil {
			calls.Add(1)
		}
		if strings.HasPrefix(mol, "!") {
			return "", fmt.Errorf("cannot parse %q", mol)
		}
		if strings.ContainsAny(mol, "0123456789") {
			return scaffold.Key(mol), nil
		}
		return "", nil
	}
}

func TestIndexer_ByPosition_KnownExample(t *testing.T) {
	var calls atomic.Int64
	ix := scaffold.NewIndexer(ringExtractor(&calls))

	idx, err := ix.ByPosition(context.Background(), []string{"CC", "CCC", "c1ccccc1"})
	require.NoError(t, err)

	require.Equal(t, 2, idx.Len())
	assert.Equal(t, 3, idx.Total())
	assert.Equal(t, int64(3), calls.Load())

	groups := idx.Groups()
	assert.Equal(t, scaffold.Key(""), groups[0].Key)
	assert.Equal(t, []int{0, 1}, groups[0].Members)
	assert.Equal(t, scaffold.Key("c1ccccc1"), groups[1].Key)
	assert.Equal(t, []int{2}, groups[1].Members)

	g, ok := idx.Lookup("c1ccccc1")
	require.True(t, ok)
	assert.Equal(t, 1, g.Size())
	_, ok = idx.Lookup("C1CC1")
	assert.False(t, ok)

	assert.Equal(t, []scaffold.Summary{{Key: "", Size: 2}, {Key: "c1ccccc1", Size: 1}}, idx.Summaries())
}

func TestIndexer_ByValue_CollapsesDuplicates(t *testing.T) {
	var calls atomic.Int64
	ix := scaffold.NewIndexer(ringExtractor(&calls))

	idx, err := ix.ByValue(context.Background(), []string{"CC", "c1ccccc1", "CC", "CCO"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), calls.Load(), "extractor is called once per input item")
	assert.Equal(t, 3, idx.Total())
	require.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"CC", "CCO"}, idx.Groups()[0].Members)
	assert.Equal(t, []string{"c1ccccc1"}, idx.Groups()[1].Members)
}

func TestIndexer_ByPosition_KeepsDuplicates(t *testing.T) {
	ix := scaffold.NewIndexer(ringExtractor(nil))
	idx, err := ix.ByPosition(context.Background(), []string{"CC", "CC", "CC"})
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, []int{0, 1, 2}, idx.Groups()[0].Members)
}

func TestIndexer_Empty(t *testing.T) {
	ix := scaffold.NewIndexer(ringExtractor(nil), scaffold.WithWorkers(4))
	idx, err := ix.ByPosition(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Total())
	assert.Empty(t, idx.Groups())
}

func TestIndexer_GroupsArePartition(t *testing.T) {
	mols := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		switch i % 4 {
		case 0:
			mols = append(mols, "CCO")
		case 1:
			mols = append(mols, fmt.Sprintf("C%d", i%7))
		case 2:
			mols = append(mols, "c1ccccc1")
		default:
			mols = append(mols, fmt.Sprintf("N%d", i%5))
		}
	}

	idx, err := scaffold.NewIndexer(ringExtractor(nil), scaffold.WithWorkers(3)).ByPosition(context.Background(), mols)
	require.NoError(t, err)

	seen := make(map[int]bool, len(mols))
	for _, g := range idx.Groups() {
		require.NotEmpty(t, g.Members)
		for _, m := range g.Members {
			require.False(t, seen[m], "position %d appears twice", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, len(mols))
}

func TestIndexer_ParallelMatchesSequential(t *testing.T) {
	mols := make([]string, 97)
	for i := range mols {
		mols[i] = fmt.Sprintf("C%dCC%d", i%11, i%11)
	}

	seq, err := scaffold.NewIndexer(ringExtractor(nil)).ByPosition(context.Background(), mols)
	require.NoError(t, err)

	for _, workers := range []int{2, 5, 8, 200} {
		par, err := scaffold.NewIndexer(ringExtractor(nil), scaffold.WithWorkers(workers)).
			ByPosition(context.Background(), mols)
		require.NoError(t, err)
		assert.Equal(t, seq.Groups(), par.Groups(), "workers=%d", workers)
	}
}

func TestIndexer_ExtractionError_ReportsLowestPosition(t *testing.T) {
	mols := []string{"CC", "CCC", "c1ccccc1", "CCO", "!bad-a", "CN", "CO", "!bad-b", "CCl"}

	for _, workers := range []int{1, 2, 4, 9} {
		_, err := scaffold.NewIndexer(ringExtractor(nil), scaffold.WithWorkers(workers)).
			ByPosition(context.Background(), mols)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeScaffoldExtractionFailed))

		var xe *scaffold.ExtractionError
		require.True(t, stderrors.As(err, &xe), "workers=%d", workers)
		assert.Equal(t, 4, xe.Position, "workers=%d", workers)
		assert.Equal(t, "!bad-a", xe.Molecule)
		assert.Contains(t, xe.Error(), "position 4")
	}
}

func TestIndexer_ExtractionError_NoPartialIndex(t *testing.T) {
	idx, err := scaffold.NewIndexer(ringExtractor(nil)).ByValue(context.Background(), []string{"CC", "!x"})
	assert.Nil(t, idx)
	assert.Error(t, err)
}

func TestIndexer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scaffold.NewIndexer(ringExtractor(nil), scaffold.WithWorkers(2)).
		ByPosition(ctx, []string{"CC", "CCC", "CCCC"})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	mu     sync.Mutex
	status map[string]int
}

func (r *recordingObserver) ObserveExtraction(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[status]++
}

func TestIndexer_ObserverAndProgress(t *testing.T) {
	obs := &recordingObserver{status: map[string]int{}}
	core, logs := observer.New(zapcore.DebugLevel)

	ix := scaffold.NewIndexer(ringExtractor(nil),
		scaffold.WithObserver(obs),
		scaffold.WithLogger(logging.NewLoggerFromCore(core)),
		scaffold.WithProgressEvery(2),
	)
	_, err := ix.ByPosition(context.Background(), []string{"CC", "CCC", "C1CC1", "CCO"})
	require.NoError(t, err)

	assert.Equal(t, 4, obs.status["ok"])
	assert.Equal(t, 2, logs.FilterMessage("scaffold extraction progress").Len())
	assert.Equal(t, 1, logs.FilterMessage("scaffold extraction finished").Len())
}

func TestBorders(t *testing.T) {
	assert.Equal(t, []int{0, 3, 6, 10}, scaffold.Borders(10, 3))
	assert.Equal(t, []int{0, 5}, scaffold.Borders(5, 1))
	assert.Equal(t, []int{0, 5}, scaffold.Borders(5, 0))
	assert.Equal(t, []int{0, 0, 1}, scaffold.Borders(1, 2))
}

func TestParseIdentityMode(t *testing.T) {
	m, err := scaffold.ParseIdentityMode("")
	require.NoError(t, err)
	assert.Equal(t, scaffold.ModeIndex, m)

	m, err = scaffold.ParseIdentityMode(" Value ")
	require.NoError(t, err)
	assert.Equal(t, scaffold.ModeValue, m)

	_, err = scaffold.ParseIdentityMode("hash")
	assert.True(t, errors.IsCode(err, errors.ErrCodeIdentityModeInvalid))
}

//Personal.AI order the ending
