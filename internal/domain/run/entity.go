// Package run records completed split runs.
package run

import (
	"time"

	"github.com/google/uuid"
)

// Run is the persisted summary of one split.
type Run struct {
	ID             uuid.UUID `json:"id" yaml:"run_id"`
	Input          string    `json:"input" yaml:"input"`
	Policy         string    `json:"policy" yaml:"policy"`
	Seed           int64     `json:"seed" yaml:"seed"`
	TrainSize      float64   `json:"train_size" yaml:"train_size"`
	TestSize       float64   `json:"test_size" yaml:"test_size"`
	Molecules      int       `json:"molecules" yaml:"molecules"`
	Scaffolds      int       `json:"scaffolds" yaml:"scaffolds"`
	TrainMolecules int       `json:"train_molecules" yaml:"train_molecules"`
	TestMolecules  int       `json:"test_molecules" yaml:"test_molecules"`
	TrainScaffolds int       `json:"train_scaffolds" yaml:"train_scaffolds"`
	TestScaffolds  int       `json:"test_scaffolds" yaml:"test_scaffolds"`
	TrainFraction  float64   `json:"train_fraction" yaml:"train_fraction"`
	TestFraction   float64   `json:"test_fraction" yaml:"test_fraction"`
	Location       string    `json:"location,omitempty" yaml:"location,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// New returns a Run with a fresh id and the current UTC time.
func New(input, policy string, seed int64, trainSize, testSize float64) *Run {
	return &Run{
		ID:        uuid.New(),
		Input:     input,
		Policy:    policy,
		Seed:      seed,
		TrainSize: trainSize,
		TestSize:  testSize,
		CreatedAt: time.Now().UTC(),
	}
}

//Personal.AI order the ending
