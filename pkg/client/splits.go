package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SplitsClient calls the split and scaffold endpoints.
type SplitsClient struct {
	client *Client
}

// SplitRequest asks the server to split SMILES by scaffold.  Nil fields take
// the server defaults.
type SplitRequest struct {
	Name           string    `json:"name,omitempty"`
	SMILES         []string  `json:"smiles"`
	IDs            []string  `json:"ids,omitempty"`
	Sizes          []float64 `json:"sizes,omitempty"`
	Balanced       *bool     `json:"balanced,omitempty"`
	Seed           *int64    `json:"seed,omitempty"`
	WriteArtifacts bool      `json:"write_artifacts"`
}

// Side describes one partition of a split.
type Side struct {
	Molecules int     `json:"molecules"`
	Scaffolds int     `json:"scaffolds"`
	Fraction  float64 `json:"fraction"`
	Positions []int   `json:"positions"`
}

// SplitResult is the server's answer to a SplitRequest.
type SplitResult struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Policy    string    `json:"policy"`
	Seed      int64     `json:"seed"`
	Molecules int       `json:"molecules"`
	Scaffolds int       `json:"scaffolds"`
	Train     Side      `json:"train"`
	Test      Side      `json:"test"`
	Artifacts []string  `json:"artifacts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Run is a recorded split run.
type Run struct {
	ID             string    `json:"id"`
	Input          string    `json:"input"`
	Policy         string    `json:"policy"`
	Seed           int64     `json:"seed"`
	TrainSize      float64   `json:"train_size"`
	TestSize       float64   `json:"test_size"`
	Molecules      int       `json:"molecules"`
	Scaffolds      int       `json:"scaffolds"`
	TrainMolecules int       `json:"train_molecules"`
	TestMolecules  int       `json:"test_molecules"`
	TrainScaffolds int       `json:"train_scaffolds"`
	TestScaffolds  int       `json:"test_scaffolds"`
	TrainFraction  float64   `json:"train_fraction"`
	TestFraction   float64   `json:"test_fraction"`
	Location       string    `json:"location,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScaffoldGroup is one group returned by Index.  Positions is set in index
// mode and Molecules in value mode.
type ScaffoldGroup struct {
	Scaffold  string   `json:"scaffold"`
	Size      int      `json:"size"`
	Positions []int    `json:"positions,omitempty"`
	Molecules []string `json:"molecules,omitempty"`
}

// Create runs a split.
func (s *SplitsClient) Create(ctx context.Context, req *SplitRequest) (*SplitResult, error) {
	if req == nil || len(req.SMILES) == 0 {
		return nil, fmt.Errorf("scafsplit: at least one SMILES is required")
	}
	var out SplitResult
	if err := s.client.post(ctx, "/api/v1/splits", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a recorded run.
func (s *SplitsClient) Get(ctx context.Context, runID string) (*Run, error) {
	if runID == "" {
		return nil, fmt.Errorf("scafsplit: run id is required")
	}
	var out Run
	if err := s.client.get(ctx, "/api/v1/splits/"+url.PathEscape(runID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns up to limit recent runs, newest first.  limit <= 0 uses the
// server default.
func (s *SplitsClient) List(ctx context.Context, limit int) ([]Run, error) {
	path := "/api/v1/splits"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Runs []Run `json:"runs"`
	}
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// Index groups smiles by scaffold.  identity is "index" or "value".
func (s *SplitsClient) Index(ctx context.Context, smiles []string, identity string) ([]ScaffoldGroup, error) {
	body := struct {
		SMILES   []string `json:"smiles"`
		Identity string   `json:"identity,omitempty"`
	}{smiles, identity}
	var out struct {
		Groups []ScaffoldGroup `json:"groups"`
	}
	if err := s.client.post(ctx, "/api/v1/scaffolds", body, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

//Personal.AI order the ending
