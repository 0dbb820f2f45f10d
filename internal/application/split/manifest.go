package split

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/domain/run"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// Artifact names written for every run.
const (
	TrainTable   = "train.can"
	TestTable    = "test.can"
	TrainIndex   = "train.idx"
	TestIndex    = "test.idx"
	ManifestFile = "manifest.yaml"
)

// SideSummary describes one partition.
type SideSummary struct {
	Molecules int     `yaml:"molecules" json:"molecules"`
	Scaffolds int     `yaml:"scaffolds" json:"scaffolds"`
	Fraction  float64 `yaml:"fraction" json:"fraction"`
}

// Manifest is the YAML summary stored next to the split tables.
type Manifest struct {
	RunID     string             `yaml:"run_id" json:"run_id"`
	CreatedAt time.Time          `yaml:"created_at" json:"created_at"`
	Input     string             `yaml:"input" json:"input"`
	Policy    string             `yaml:"policy" json:"policy"`
	Seed      int64              `yaml:"seed" json:"seed"`
	Sizes     partition.SizeSpec `yaml:"sizes" json:"sizes"`
	Molecules int                `yaml:"molecules" json:"molecules"`
	Scaffolds int                `yaml:"scaffolds" json:"scaffolds"`
	Train     SideSummary        `yaml:"train" json:"train"`
	Test      SideSummary        `yaml:"test" json:"test"`
	Artifacts []string           `yaml:"artifacts" json:"artifacts"`
}

// NewManifest summarizes r.
func NewManifest(r *run.Run) *Manifest {
	return &Manifest{
		RunID:     r.ID.String(),
		CreatedAt: r.CreatedAt,
		Input:     r.Input,
		Policy:    r.Policy,
		Seed:      r.Seed,
		Sizes:     partition.SizeSpec{Train: r.TrainSize, Test: r.TestSize},
		Molecules: r.Molecules,
		Scaffolds: r.Scaffolds,
		Train:     SideSummary{Molecules: r.TrainMolecules, Scaffolds: r.TrainScaffolds, Fraction: r.TrainFraction},
		Test:      SideSummary{Molecules: r.TestMolecules, Scaffolds: r.TestScaffolds, Fraction: r.TestFraction},
		Artifacts: []string{TrainTable, TestTable, TrainIndex, TestIndex},
	}
}

// Encode renders the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode manifest")
	}
	return data, nil
}

// ReadManifest decodes a manifest written by Encode.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode manifest")
	}
	return &m, nil
}

//Personal.AI order the ending
