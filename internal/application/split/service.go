// Package split orchestrates a scaffold split run: index, allocate, write the
// train and test tables, record the run and announce it.
package split

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/scaffold-split/internal/dataset"
	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/domain/run"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	kafkainfra "github.com/turtacn/scaffold-split/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// EventPublisher announces completed runs.
type EventPublisher interface {
	PublishSplitCompleted(ctx context.Context, payload *kafkainfra.SplitCompletedPayload) error
}

// Recorder receives split run measurements.
type Recorder interface {
	RecordSplit(policy string, err error, elapsed time.Duration, trainMols, testMols, trainScaffolds, testScaffolds int)
}

// Request is the input of Run.
type Request struct {
	Dataset *dataset.Dataset
	Options partition.Options
	// WriteArtifacts stores the tables and the manifest when an ArtifactStore
	// is configured.
	WriteArtifacts bool
}

// Result is the output of Run.
type Result struct {
	Run       *run.Run
	Split     *partition.Split[int]
	Train     *dataset.Dataset
	Test      *dataset.Dataset
	Manifest  *Manifest
	Artifacts []string
}

// GroupView is one scaffold group as reported by Index.
type GroupView struct {
	Scaffold  string   `json:"scaffold" yaml:"scaffold"`
	Size      int      `json:"size" yaml:"size"`
	Positions []int    `json:"positions,omitempty" yaml:"positions,omitempty"`
	Molecules []string `json:"molecules,omitempty" yaml:"molecules,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

func WithArtifactStore(s ArtifactStore) Option { return func(svc *Service) { svc.store = s } }

func WithRunRepository(r run.Repository) Option { return func(svc *Service) { svc.runs = r } }

func WithEventPublisher(p EventPublisher) Option { return func(svc *Service) { svc.events = p } }

func WithRecorder(r Recorder) Option { return func(svc *Service) { svc.recorder = r } }

func WithLogger(l logging.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// Service runs splits.  Every collaborator except the indexer is optional.
type Service struct {
	indexer  *scaffold.Indexer
	splitter *partition.Splitter
	store    ArtifactStore
	runs     run.Repository
	events   EventPublisher
	recorder Recorder
	logger   logging.Logger
}

// NewService builds a Service around indexer.
func NewService(indexer *scaffold.Indexer, opts ...Option) *Service {
	svc := &Service{indexer: indexer, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(svc)
	}
	svc.splitter = partition.NewSplitter(indexer, svc.logger)
	return svc
}

// Run splits req.Dataset by scaffold.
func (s *Service) Run(ctx context.Context, req Request) (res *Result, err error) {
	if req.Dataset == nil {
		return nil, errors.InvalidParam("dataset is required")
	}
	opts := req.Options
	policy := partition.PolicyName(opts.Balanced)
	start := time.Now()

	defer func() {
		if s.recorder == nil {
			return
		}
		if err != nil {
			s.recorder.RecordSplit(policy, err, time.Since(start), 0, 0, 0, 0)
			return
		}
		s.recorder.RecordSplit(policy, nil, time.Since(start),
			len(res.Split.Train), len(res.Split.Test), res.Split.TrainScaffolds, res.Split.TestScaffolds)
	}()

	sp, err := s.splitter.Split(ctx, req.Dataset.SMILES(), opts)
	if err != nil {
		return nil, err
	}

	rec := run.New(req.Dataset.Name, policy, opts.Seed, opts.Sizes.Train, opts.Sizes.Test)
	rec.Molecules = req.Dataset.Len()
	rec.Scaffolds = sp.TrainScaffolds + sp.TestScaffolds
	rec.TrainMolecules, rec.TestMolecules = len(sp.Train), len(sp.Test)
	rec.TrainScaffolds, rec.TestScaffolds = sp.TrainScaffolds, sp.TestScaffolds
	rec.TrainFraction, rec.TestFraction = sp.TrainFraction, sp.TestFraction

	train, err := req.Dataset.Subset("train", sp.Train)
	if err != nil {
		return nil, err
	}
	test, err := req.Dataset.Subset("test", sp.Test)
	if err != nil {
		return nil, err
	}

	res = &Result{Run: rec, Split: sp, Train: train, Test: test, Manifest: NewManifest(rec)}

	if req.WriteArtifacts && s.store != nil {
		if err := s.writeArtifacts(ctx, res); err != nil {
			return nil, err
		}
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, rec); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		if err := s.events.PublishSplitCompleted(ctx, payloadOf(rec, res.Artifacts)); err != nil {
			s.logger.Warn("failed to publish split event",
				logging.String("run_id", rec.ID.String()), logging.Err(err))
		}
	}

	s.logger.Info("split run finished",
		logging.String("run_id", rec.ID.String()),
		logging.String("input", rec.Input),
		logging.Int("artifacts", len(res.Artifacts)))
	return res, nil
}

// artifactCount is the number of files writeArtifacts stores per run.
const artifactCount = 5

// artifactFailure reports a failed put.  Files stored before the failure are
// not removed, so their locations are logged for manual cleanup.
func (s *Service) artifactFailure(runID, name string, stored []string, err error) error {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeStorageError
	}
	if len(stored) > 0 {
		s.logger.Warn("partial artifact upload",
			logging.String("run_id", runID),
			logging.String("failed", name),
			logging.Any("orphaned", stored))
	}
	return errors.Wrap(err, code, "failed to store split artifacts").
		WithDetailf("artifact=%s stored=%d/%d", name, len(stored), artifactCount)
}

func (s *Service) writeArtifacts(ctx context.Context, res *Result) error {
	runID := res.Run.ID.String()
	put := func(name string, data []byte) error {
		loc, err := s.store.Put(ctx, runID, name, data)
		if err != nil {
			return s.artifactFailure(runID, name, res.Artifacts, err)
		}
		res.Artifacts = append(res.Artifacts, loc)
		return nil
	}

	var buf bytes.Buffer
	if err := dataset.WriteCan(&buf, res.Train); err != nil {
		return err
	}
	if err := put(TrainTable, buf.Bytes()); err != nil {
		return err
	}

	buf = bytes.Buffer{}
	if err := dataset.WriteCan(&buf, res.Test); err != nil {
		return err
	}
	if err := put(TestTable, buf.Bytes()); err != nil {
		return err
	}

	buf = bytes.Buffer{}
	if err := dataset.WriteIndex(&buf, res.Split.Train); err != nil {
		return err
	}
	if err := put(TrainIndex, buf.Bytes()); err != nil {
		return err
	}

	buf = bytes.Buffer{}
	if err := dataset.WriteIndex(&buf, res.Split.Test); err != nil {
		return err
	}
	if err := put(TestIndex, buf.Bytes()); err != nil {
		return err
	}

	data, err := res.Manifest.Encode()
	if err != nil {
		return err
	}
	if err := put(ManifestFile, data); err != nil {
		return err
	}
	res.Run.Location = res.Artifacts[len(res.Artifacts)-1]
	return nil
}

func payloadOf(r *run.Run, artifacts []string) *kafkainfra.SplitCompletedPayload {
	return &kafkainfra.SplitCompletedPayload{
		RunID:          r.ID.String(),
		Input:          r.Input,
		Policy:         r.Policy,
		Seed:           r.Seed,
		TrainSize:      r.TrainSize,
		TestSize:       r.TestSize,
		Molecules:      r.Molecules,
		Scaffolds:      r.Scaffolds,
		TrainMolecules: r.TrainMolecules,
		TestMolecules:  r.TestMolecules,
		TrainScaffolds: r.TrainScaffolds,
		TestScaffolds:  r.TestScaffolds,
		Artifacts:      artifacts,
		CompletedAt:    r.CreatedAt,
	}
}

// Index groups mols by scaffold.  In index mode every position is listed; in
// value mode identical strings collapse into one member.
func (s *Service) Index(ctx context.Context, mols []string, mode scaffold.IdentityMode) ([]GroupView, error) {
	switch mode {
	case scaffold.ModeValue:
		idx, err := s.indexer.ByValue(ctx, mols)
		if err != nil {
			return nil, err
		}
		out := make([]GroupView, 0, idx.Len())
		for _, g := range idx.Groups() {
			out = append(out, GroupView{Scaffold: string(g.Key), Size: g.Size(), Molecules: g.Members})
		}
		return out, nil
	case scaffold.ModeIndex, "":
		idx, err := s.indexer.ByPosition(ctx, mols)
		if err != nil {
			return nil, err
		}
		out := make([]GroupView, 0, idx.Len())
		for _, g := range idx.Groups() {
			out = append(out, GroupView{Scaffold: string(g.Key), Size: g.Size(), Positions: g.Members})
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeIdentityModeInvalid, "invalid identity mode").
			WithDetailf("mode=%q", mode)
	}
}

// GetRun loads a recorded run.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*run.Run, error) {
	if s.runs == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "run history is disabled")
	}
	return s.runs.Get(ctx, id)
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*run.Run, error) {
	if s.runs == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "run history is disabled")
	}
	return s.runs.List(ctx, limit)
}

//Personal.AI order the ending
