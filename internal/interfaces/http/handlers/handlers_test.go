package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/domain/run"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ringExtractor keys ring molecules by their own string and fails on "X".
var ringExtractor = scaffold.ExtractorFunc(func(_ context.Context, mol string) (scaffold.Key, error) {
	if mol == "X" {
		return "", stderrors.New("unknown atom")
	}
	if strings.Contains(mol, "1") {
		return scaffold.Key(mol), nil
	}
	return "", nil
})

type memRepo struct {
	mu   sync.Mutex
	runs []*run.Run
}

func (m *memRepo) Save(_ context.Context, r *run.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*run.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.NotFound("split run not found")
}

func (m *memRepo) List(_ context.Context, limit int) ([]*run.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func newTestEngine(opts ...split.Option) *gin.Engine {
	svc := split.NewService(scaffold.NewIndexer(ringExtractor), opts...)
	h := NewSplitHandler(svc, partition.Options{Sizes: partition.SizeSpec{Train: 0.67, Test: 0.33}}, nil)
	e := gin.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func do(e *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateSplit(t *testing.T) {
	e := newTestEngine()

	w := do(e, http.MethodPost, "/api/v1/splits", map[string]interface{}{
		"name":   "alkanes",
		"smiles": []string{"CC", "CCC", "c1ccccc1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SplitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alkanes", resp.Name)
	assert.Equal(t, partition.PolicyGreedy, resp.Policy)
	assert.Equal(t, 3, resp.Molecules)
	assert.Equal(t, 2, resp.Scaffolds)
	assert.Equal(t, []int{0, 1}, resp.Train.Positions)
	assert.Equal(t, []int{2}, resp.Test.Positions)
	assert.InDelta(t, 2.0/3.0, resp.Train.Fraction, 1e-9)
	assert.Empty(t, resp.Artifacts)
	_, err := uuid.Parse(resp.RunID)
	assert.NoError(t, err)
}

func TestCreateSplit_OverridesDefaults(t *testing.T) {
	e := newTestEngine()

	w := do(e, http.MethodPost, "/api/v1/splits", map[string]interface{}{
		"smiles":   []string{"CC", "CCC", "c1ccccc1"},
		"sizes":    []float64{0.5, 0.5},
		"balanced": true,
		"seed":     7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SplitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "balanced", resp.Policy)
	assert.Equal(t, int64(7), resp.Seed)
	assert.Equal(t, "request", resp.Name)
	assert.Equal(t, 3, resp.Train.Molecules+resp.Test.Molecules)
}

func TestCreateSplit_Errors(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   errors.ErrorCode
	}{
		{"malformed json", `{"smiles":`, http.StatusBadRequest, errors.ErrCodeBadRequest},
		{"one size", map[string]interface{}{"smiles": []string{"CC"}, "sizes": []float64{0.8}}, http.StatusUnprocessableEntity, errors.ErrCodeValidation},
		{"ids mismatch", map[string]interface{}{"smiles": []string{"CC"}, "ids": []string{"a", "b"}}, http.StatusUnprocessableEntity, errors.ErrCodeValidation},
		{"sizes do not sum to one", map[string]interface{}{"smiles": []string{"CC"}, "sizes": []float64{0.7, 0.2}}, http.StatusBadRequest, errors.ErrCodeSplitSizesInvalid},
		{"extraction failure", map[string]interface{}{"smiles": []string{"CC", "X"}}, http.StatusUnprocessableEntity, errors.ErrCodeScaffoldExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(e, http.MethodPost, "/api/v1/splits", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code.String(), decodeError(t, w).Code)
		})
	}
}

func TestCreateSplit_EmptyInput(t *testing.T) {
	e := newTestEngine()

	w := do(e, http.MethodPost, "/api/v1/splits", map[string]interface{}{"smiles": []string{}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SplitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Molecules)
	assert.Equal(t, 0, resp.Scaffolds)
	assert.Equal(t, []int{}, resp.Train.Positions)
	assert.Equal(t, []int{}, resp.Test.Positions)
	assert.Zero(t, resp.Train.Fraction)
	assert.Contains(t, w.Body.String(), `"positions":[]`)
}

func TestGetAndListSplits(t *testing.T) {
	e := newTestEngine(split.WithRunRepository(&memRepo{}))

	w := do(e, http.MethodPost, "/api/v1/splits", map[string]interface{}{"smiles": []string{"CC", "c1ccccc1"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created SplitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(e, http.MethodGet, "/api/v1/splits/"+created.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got run.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.RunID, got.ID.String())
	assert.Equal(t, 2, got.Molecules)

	w = do(e, http.MethodGet, "/api/v1/splits?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs  []run.Run `json:"runs"`
		Count int       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = do(e, http.MethodGet, "/api/v1/splits/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(e, http.MethodGet, "/api/v1/splits/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSplits_HistoryDisabled(t *testing.T) {
	e := newTestEngine()

	w := do(e, http.MethodGet, "/api/v1/splits", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "run history is disabled", decodeError(t, w).Message)
}

func TestIndexScaffolds(t *testing.T) {
	e := newTestEngine()
	mols := []string{"CC", "c1ccccc1", "CC", "C1CC1"}

	t.Run("index", func(t *testing.T) {
		w := do(e, http.MethodPost, "/api/v1/scaffolds", IndexRequest{SMILES: mols})
		require.Equal(t, http.StatusOK, w.Code)
		var resp IndexResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "index", resp.Identity)
		require.Len(t, resp.Groups, 3)
		assert.Equal(t, "", resp.Groups[0].Scaffold)
		assert.Equal(t, []int{0, 2}, resp.Groups[0].Positions)
	})

	t.Run("value", func(t *testing.T) {
		w := do(e, http.MethodPost, "/api/v1/scaffolds", IndexRequest{SMILES: mols, Identity: "value"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp IndexResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Groups, 3)
		assert.Equal(t, []string{"CC"}, resp.Groups[0].Molecules)
		assert.Equal(t, 1, resp.Groups[0].Size)
	})

	t.Run("invalid identity", func(t *testing.T) {
		w := do(e, http.MethodPost, "/api/v1/scaffolds", IndexRequest{SMILES: mols, Identity: "hash"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeIdentityModeInvalid.String(), decodeError(t, w).Code)
	})

	t.Run("empty input", func(t *testing.T) {
		w := do(e, http.MethodPost, "/api/v1/scaffolds", IndexRequest{})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"identity":"index","groups":[]}`, w.Body.String())
	})
}

func TestWriteAppError_MasksInternal(t *testing.T) {
	e := gin.New()
	e.GET("/plain", func(c *gin.Context) { writeAppError(c, stderrors.New("secret dsn")) })
	e.GET("/db", func(c *gin.Context) {
		writeAppError(c, errors.New(errors.ErrCodeDatabaseError, "pq: password auth failed"))
	})

	w := do(e, http.MethodGet, "/plain", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")

	w = do(e, http.MethodGet, "/db", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "database error", decodeError(t, w).Message)
}

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string                  { return f.name }
func (f fakeChecker) Check(_ context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	newEngine := func(checkers ...HealthChecker) *gin.Engine {
		e := gin.New()
		NewHealthHandler("v1.2.3", checkers...).RegisterRoutes(e)
		return e
	}

	t.Run("liveness", func(t *testing.T) {
		w := do(newEngine(fakeChecker{"redis", stderrors.New("down")}), http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp LivenessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alive", resp.Status)
		assert.Equal(t, "v1.2.3", resp.Version)
	})

	t.Run("ready without checkers", func(t *testing.T) {
		w := do(newEngine(), http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		w := do(newEngine(fakeChecker{name: "postgres"}, fakeChecker{name: "redis"}), http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Components["redis"].Status)
	})

	t.Run("not ready", func(t *testing.T) {
		w := do(newEngine(fakeChecker{name: "postgres"}, fakeChecker{"redis", stderrors.New("connection refused")}),
			http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
		assert.Equal(t, "connection refused", resp.Components["redis"].Error)
		assert.Equal(t, "healthy", resp.Components["postgres"].Status)
	})
}

//Personal.AI order the ending
