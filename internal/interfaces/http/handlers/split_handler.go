package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/internal/dataset"
	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/domain/run"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// SplitService is the part of split.Service the handlers use.
type SplitService interface {
	Run(ctx context.Context, req split.Request) (*split.Result, error)
	Index(ctx context.Context, mols []string, mode scaffold.IdentityMode) ([]split.GroupView, error)
	GetRun(ctx context.Context, id uuid.UUID) (*run.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*run.Run, error)
}

// SplitHandler serves the split and scaffold endpoints.
type SplitHandler struct {
	svc      SplitService
	defaults partition.Options
	logger   logging.Logger
}

// NewSplitHandler creates a SplitHandler.  defaults supplies sizes, policy
// and seed for requests that omit them.
func NewSplitHandler(svc SplitService, defaults partition.Options, logger logging.Logger) *SplitHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SplitHandler{svc: svc, defaults: defaults, logger: logger}
}

// RegisterRoutes registers the API routes on r.
func (h *SplitHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/splits", h.CreateSplit)
	r.GET("/splits", h.ListSplits)
	r.GET("/splits/:id", h.GetSplit)
	r.POST("/scaffolds", h.IndexScaffolds)
}

// CreateSplitRequest is the body of POST /splits.
type CreateSplitRequest struct {
	Name   string   `json:"name"`
	SMILES []string `json:"smiles"`
	// IDs is optional; when present it must match SMILES in length.
	IDs []string `json:"ids,omitempty"`
	// Sizes is [train, test].  Omitted sizes fall back to the server defaults.
	Sizes          []float64 `json:"sizes,omitempty"`
	Balanced       *bool     `json:"balanced,omitempty"`
	Seed           *int64    `json:"seed,omitempty"`
	WriteArtifacts bool      `json:"write_artifacts"`
}

// SideResponse describes one partition.
type SideResponse struct {
	Molecules int     `json:"molecules"`
	Scaffolds int     `json:"scaffolds"`
	Fraction  float64 `json:"fraction"`
	Positions []int   `json:"positions"`
}

// SplitResponse is the body returned by POST /splits.
type SplitResponse struct {
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Policy    string       `json:"policy"`
	Seed      int64        `json:"seed"`
	Molecules int          `json:"molecules"`
	Scaffolds int          `json:"scaffolds"`
	Train     SideResponse `json:"train"`
	Test      SideResponse `json:"test"`
	Artifacts []string     `json:"artifacts,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// options merges req over the handler defaults.
func (h *SplitHandler) options(req *CreateSplitRequest) (partition.Options, error) {
	opts := h.defaults
	switch len(req.Sizes) {
	case 0:
	case 2:
		opts.Sizes = partition.SizeSpec{Train: req.Sizes[0], Test: req.Sizes[1]}
	default:
		return opts, errors.NewValidationError("sizes", "sizes must be [train, test]")
	}
	if req.Balanced != nil {
		opts.Balanced = *req.Balanced
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	return opts, nil
}

func toDataset(req *CreateSplitRequest) (*dataset.Dataset, error) {
	if len(req.IDs) > 0 && len(req.IDs) != len(req.SMILES) {
		return nil, errors.NewValidationError("ids",
			fmt.Sprintf("got %d ids for %d molecules", len(req.IDs), len(req.SMILES)))
	}
	name := req.Name
	if name == "" {
		name = "request"
	}
	ds := &dataset.Dataset{Name: name, Records: make([]dataset.Record, len(req.SMILES))}
	for i, s := range req.SMILES {
		ds.Records[i].SMILES = s
		if len(req.IDs) > 0 {
			ds.Records[i].ID = req.IDs[i]
		}
	}
	return ds, nil
}

// CreateSplit handles POST /splits.
func (h *SplitHandler) CreateSplit(c *gin.Context) {
	var req CreateSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	opts, err := h.options(&req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	ds, err := toDataset(&req)
	if err != nil {
		writeAppError(c, err)
		return
	}

	res, err := h.svc.Run(c.Request.Context(), split.Request{
		Dataset:        ds,
		Options:        opts,
		WriteArtifacts: req.WriteArtifacts,
	})
	if err != nil {
		h.logger.Warn("split request failed",
			logging.String("name", ds.Name), logging.Int("molecules", ds.Len()), logging.Err(err))
		writeAppError(c, err)
		return
	}

	r := res.Run
	c.JSON(http.StatusCreated, SplitResponse{
		RunID:     r.ID.String(),
		Name:      r.Input,
		Policy:    r.Policy,
		Seed:      r.Seed,
		Molecules: r.Molecules,
		Scaffolds: r.Scaffolds,
		Train: SideResponse{
			Molecules: r.TrainMolecules,
			Scaffolds: r.TrainScaffolds,
			Fraction:  r.TrainFraction,
			Positions: nonNil(res.Split.Train),
		},
		Test: SideResponse{
			Molecules: r.TestMolecules,
			Scaffolds: r.TestScaffolds,
			Fraction:  r.TestFraction,
			Positions: nonNil(res.Split.Test),
		},
		Artifacts: res.Artifacts,
		CreatedAt: r.CreatedAt,
	})
}

func nonNil(p []int) []int {
	if p == nil {
		return []int{}
	}
	return p
}

// GetSplit handles GET /splits/:id.
func (h *SplitHandler) GetSplit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeAppError(c, errors.InvalidParam("run id must be a UUID").WithDetailf("id=%s", c.Param("id")))
		return
	}
	r, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListSplits handles GET /splits?limit=N.
func (h *SplitHandler) ListSplits(c *gin.Context) {
	runs, err := h.svc.ListRuns(c.Request.Context(), parseLimit(c))
	if err != nil {
		writeAppError(c, err)
		return
	}
	if runs == nil {
		runs = []*run.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// IndexRequest is the body of POST /scaffolds.
type IndexRequest struct {
	SMILES   []string `json:"smiles"`
	Identity string   `json:"identity"`
}

// IndexResponse lists the scaffold groups in first-seen order.
type IndexResponse struct {
	Identity string            `json:"identity"`
	Groups   []split.GroupView `json:"groups"`
}

// IndexScaffolds handles POST /scaffolds.
func (h *SplitHandler) IndexScaffolds(c *gin.Context) {
	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	mode, err := scaffold.ParseIdentityMode(req.Identity)
	if err != nil {
		writeAppError(c, err)
		return
	}
	groups, err := h.svc.Index(c.Request.Context(), req.SMILES, mode)
	if err != nil {
		writeAppError(c, err)
		return
	}
	if groups == nil {
		groups = []split.GroupView{}
	}
	c.JSON(http.StatusOK, IndexResponse{Identity: string(mode), Groups: groups})
}

//Personal.AI order the ending
