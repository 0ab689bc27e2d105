package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/dictionary-indexer/internal/apperr"
	"github.com/theleeeo/dictionary-indexer/internal/doc"
	"github.com/theleeeo/dictionary-indexer/internal/httpapi"
	"github.com/theleeeo/dictionary-indexer/internal/query"
	"github.com/theleeeo/dictionary-indexer/internal/store"
)

// fakeStore answers query.Store from fixed fixtures.
type fakeStore struct {
	indices map[string]bool
	byIndex map[string]map[string]map[string]any
	hits    []map[string]any
}

func (f *fakeStore) ExistsIndex(_ context.Context, name string) (bool, error) {
	return f.indices[name], nil
}

func (f *fakeStore) GetByID(_ context.Context, index, id string) (map[string]any, error) {
	if src, ok := f.byIndex[index][id]; ok {
		return src, nil
	}
	return nil, &apperr.NotFound{Index: index, ID: id}
}

func (f *fakeStore) Search(_ context.Context, _ doc.IndexedDocument, _ string, _, _ int) (*store.SearchResult, error) {
	return &store.SearchResult{Total: int64(len(f.hits)), Hits: f.hits}, nil
}

func (f *fakeStore) SearchRaw(_ context.Context, _ string, _ map[string]any, _, _ int) (*store.SearchResult, error) {
	return &store.SearchResult{Total: int64(len(f.hits)), Hits: f.hits}, nil
}

func newTestServer(fs *fakeStore) *echo.Echo {
	h := httpapi.NewHandler(query.NewService(fs), httpapi.SystemInfo{
		Version:        "1.2.3",
		IsKafkaEnabled: true,
		KafkaQueues:    []string{"window", "role"},
	}, nil, nil)
	return httpapi.NewEcho(h, []string{"https://ui.example"})
}

func TestSystemInfoRoutes(t *testing.T) {
	e := newTestServer(&fakeStore{})

	for _, path := range []string{"/", "/api", "/api/dictionary/system-info"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "1.2.3", body["version"])
		assert.Equal(t, true, body["is_kafka_enabled"])
	}
}

func TestGetWindow_ReturnsEntity(t *testing.T) {
	fs := &fakeStore{
		indices: map[string]bool{"window": true},
		byIndex: map[string]map[string]map[string]any{
			"window": {"w1": {"id": "w1", "name": "Sales Order"}},
		},
	}
	e := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/dictionary/windows/w1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sales Order", body["name"])
}

func TestListWindows_WrapsInEnvelope(t *testing.T) {
	fs := &fakeStore{
		indices: map[string]bool{"window": true},
		hits: []map[string]any{
			{"id": "w1", "name": "Sales Order"},
			{"id": "w2", "name": "Invoice"},
		},
	}
	e := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/dictionary/windows", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Windows []map[string]any `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Windows, 2)
}

func TestErrorsRenderTheJSONEnvelope(t *testing.T) {
	// No indices exist, so the resolver's whole chain misses.
	e := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/dictionary/windows/w1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusInternalServerError), body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestPreflightAnswersNoContent(t *testing.T) {
	e := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/dictionary/windows", nil)
	req.Header.Set(echo.HeaderOrigin, "https://ui.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ui.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
