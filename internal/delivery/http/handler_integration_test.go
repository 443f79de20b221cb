package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macronotes/backend/config"
	"github.com/macronotes/backend/internal/domain"
	"github.com/macronotes/backend/internal/infrastructure/cache"
	"github.com/macronotes/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// fakeFoodDatabase implements domain.FoodDatabase
type fakeFoodDatabase struct {
	entries []domain.FoodEntry
}

func (f *fakeFoodDatabase) Entries(ctx context.Context) ([]domain.FoodEntry, error) {
	return f.entries, nil
}

// fakeDocumentStore implements domain.DocumentStore
type fakeDocumentStore struct {
	blocks map[string][]string
}

func (f *fakeDocumentStore) GetBlockLines(ctx context.Context, id string) ([]string, error) {
	lines, ok := f.blocks[id]
	if !ok {
		return nil, domain.ErrBlockNotFound
	}
	return lines, nil
}

func (f *fakeDocumentStore) SaveBlockLines(ctx context.Context, id string, lines []string) error {
	f.blocks[id] = lines
	return nil
}

func (f *fakeDocumentStore) ListBlockIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.blocks))
	for id := range f.blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type testEnv struct {
	router *gin.Engine
	store  *fakeDocumentStore
	cache  *cache.MemoryCache
}

// setupTestEnv wires real usecase services over in-memory fakes.
func setupTestEnv() *testEnv {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		RateLimit: config.RateLimitConfig{PerIP: 0},
	}

	foods := &fakeFoodDatabase{entries: []domain.FoodEntry{
		{Name: "Apple", ServingSizeGrams: 100, Calories: 52, Protein: 0.3, Fat: 0.2, Carbs: 14},
		{Name: "Oatmeal", ServingSizeGrams: 100, Calories: 389, Protein: 16.9, Fat: 6.9, Carbs: 66.3},
	}}
	store := &fakeDocumentStore{blocks: map[string][]string{
		"2024-01-01": {"id: 2024-01-01", "meal:Breakfast", "- Oatmeal:40g", "Apple:150g"},
		"2024-01-02": {"Apple:100g"},
	}}
	blockCache := cache.NewMemoryCache(time.Minute)

	resolver := usecase.NewResolver(foods, false)
	parser := usecase.NewBlockParser(resolver, false)
	calc := usecase.NewCalcService(store, parser, false)
	handler := NewHandler(calc, resolver, store, blockCache)

	return &testEnv{
		router: SetupRouter(cfg, handler),
		store:  store,
		cache:  blockCache,
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	env := setupTestEnv()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListBlocksEndpoint(t *testing.T) {
	env := setupTestEnv()

	req, _ := http.NewRequest("GET", "/api/v1/blocks", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, body["blockIds"])
}

func TestGetBlockEndpoint(t *testing.T) {
	t.Run("returns groups and totals", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/blocks/2024-01-01", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var view domain.BlockView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, "2024-01-01", view.ID)
		require.Len(t, view.Groups, 2)
		assert.Equal(t, "Breakfast", view.Groups[0].Name)
		assert.Equal(t, domain.OtherItemsGroup, view.Groups[1].Name)
		// 40g oatmeal (155.6) + 150g apple (78.0)
		assert.InDelta(t, 233.6, view.Totals.Calories, 1e-9)
	})

	t.Run("returns 404 for an unknown block", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/blocks/unknown", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("caches the parsed block", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/blocks/2024-01-02", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		_, err := env.cache.Get(context.Background(), "2024-01-02")
		assert.NoError(t, err)
	})
}

func TestPutBlockEndpoint(t *testing.T) {
	t.Run("normalizes lines through the merger before saving", func(t *testing.T) {
		env := setupTestEnv()

		body, _ := json.Marshal(map[string][]string{
			"lines": {"Apple:100g", "Apple:50g"},
		})
		req, _ := http.NewRequest("PUT", "/api/v1/blocks/2024-02-01", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Apple:150g"}, env.store.blocks["2024-02-01"])
	})

	t.Run("invalidates the cached parse", func(t *testing.T) {
		env := setupTestEnv()

		// Prime the cache
		req, _ := http.NewRequest("GET", "/api/v1/blocks/2024-01-02", nil)
		env.router.ServeHTTP(httptest.NewRecorder(), req)

		body, _ := json.Marshal(map[string][]string{"lines": {"Apple:200g"}})
		put, _ := http.NewRequest("PUT", "/api/v1/blocks/2024-01-02", bytes.NewReader(body))
		put.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, put)
		require.Equal(t, http.StatusOK, w.Code)

		_, err := env.cache.Get(context.Background(), "2024-01-02")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("rejects a body without lines", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("PUT", "/api/v1/blocks/x", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAggregateEndpoint(t *testing.T) {
	t.Run("sums blocks and reports a per-block breakdown", func(t *testing.T) {
		env := setupTestEnv()

		body, _ := json.Marshal(map[string][]string{
			"blockIds": {"2024-01-01", "2024-01-02"},
		})
		req, _ := http.NewRequest("POST", "/api/v1/calc/aggregate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result domain.CalcResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Len(t, result.Breakdown, 2)
		assert.Equal(t, "2024-01-01", result.Breakdown[0].ID)
		assert.InDelta(t, 285.6, result.Aggregate.Calories, 1e-9)
	})

	t.Run("drops failing blocks from the breakdown", func(t *testing.T) {
		env := setupTestEnv()

		body, _ := json.Marshal(map[string][]string{
			"blockIds": {"2024-01-02", "unknown"},
		})
		req, _ := http.NewRequest("POST", "/api/v1/calc/aggregate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result domain.CalcResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Len(t, result.Breakdown, 1)
	})

	t.Run("rejects an empty id list", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("POST", "/api/v1/calc/aggregate", bytes.NewReader([]byte(`{"blockIds":[]}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResolveFoodEndpoint(t *testing.T) {
	t.Run("resolves a food with an explicit quantity", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/foods/resolve?name=Apple&quantity=150g", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var row domain.MacroRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &row))
		assert.Equal(t, "Apple", row.Name)
		assert.Equal(t, "150g", row.Serving)
		assert.Equal(t, 78.0, row.Calories)
	})

	t.Run("returns 404 for an unknown food", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/foods/resolve?name=Dragonfruit", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 without a name", func(t *testing.T) {
		env := setupTestEnv()

		req, _ := http.NewRequest("GET", "/api/v1/foods/resolve", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
