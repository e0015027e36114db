package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkantrust/vidly/auth"
	"github.com/arkantrust/vidly/handlers"
	"github.com/arkantrust/vidly/metrics"
	"github.com/arkantrust/vidly/middleware"
	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/store"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *store.Bolt
	auth    *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := store.NewBolt(filepath.Join(t.TempDir(), "vidly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc, err := auth.New("test-private-key", auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := handlers.New(s, svc, logger, metrics.New())
	return &testServer{t: t, handler: h.Routes([]string{"*"}), store: s, auth: svc}
}

// do sends a request through the full middleware stack. body may be nil, a
// raw string or any value to be JSON encoded.
func (ts *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	ts.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) token(admin bool) string {
	ts.t.Helper()
	tok, err := ts.auth.IssueToken(&models.User{ID: primitive.NewObjectID(), IsAdmin: admin})
	require.NoError(ts.t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestGenresAuthorization(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"name": "Action"}

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"no token", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"invalid token", "a", http.StatusBadRequest, "Invalid token."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/genres", body, tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}

	genres, err := ts.store.ListGenres(t.Context())
	require.NoError(t, err)
	assert.Empty(t, genres, "rejected requests must not write")
}

func TestCreateGenre(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(false)

	rec := ts.do(http.MethodPost, "/api/genres", map[string]any{"name": "abcd"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"name" length must be at least 5 characters long`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/genres", map[string]any{"name": strings.Repeat("a", 51)}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/genres", map[string]any{"name": "Action"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Action", got["name"])
	id, _ := got["_id"].(string)
	assert.True(t, primitive.IsValidObjectID(id), "_id %q", id)

	genres, err := ts.store.ListGenres(t.Context())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, id, genres[0].ID.Hex())
}

func TestGetGenre(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"Thriller", "Action", "Comedy"} {
		require.NoError(t, ts.store.CreateGenre(t.Context(), &models.Genre{Name: name}))
	}

	rec := ts.do(http.MethodGet, "/api/genres", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	genres := decode[[]models.Genre](t, rec)
	require.Len(t, genres, 3)
	assert.Equal(t, "Action", genres[0].Name)
	assert.Equal(t, "Thriller", genres[2].Name)

	rec = ts.do(http.MethodGet, "/api/genres/"+genres[1].ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, genres[1], decode[models.Genre](t, rec))

	rec = ts.do(http.MethodGet, "/api/genres/1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid ID.", rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/genres/"+primitive.NewObjectID().Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The genre with the given ID was not found.", rec.Body.String())
}

func TestGenresEmptyList(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/genres", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateGenre(t *testing.T) {
	ts := newTestServer(t)
	genre := &models.Genre{Name: "Thriller"}
	require.NoError(t, ts.store.CreateGenre(t.Context(), genre))

	rec := ts.do(http.MethodPut, "/api/genres/"+genre.ID.Hex(), map[string]any{"name": "abc"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/api/genres/"+primitive.NewObjectID().Hex(), map[string]any{"name": "Horror"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The genre with the given ID was not found.", rec.Body.String())

	rec = ts.do(http.MethodPut, "/api/genres/"+genre.ID.Hex(), map[string]any{"name": "Horror"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Genre{ID: genre.ID, Name: "Horror"}, decode[models.Genre](t, rec))

	stored, err := ts.store.GetGenre(t.Context(), genre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Horror", stored.Name)
}

func TestDeleteGenre(t *testing.T) {
	ts := newTestServer(t)
	genre := &models.Genre{Name: "Thriller"}
	require.NoError(t, ts.store.CreateGenre(t.Context(), genre))
	path := "/api/genres/" + genre.ID.Hex()

	rec := ts.do(http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authentication runs before the id guard.
	rec = ts.do(http.MethodDelete, "/api/genres/1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodDelete, path, nil, ts.token(false))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied.", rec.Body.String())

	admin := ts.token(true)
	rec = ts.do(http.MethodDelete, "/api/genres/1", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid ID.", rec.Body.String())

	rec = ts.do(http.MethodDelete, path, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, *genre, decode[models.Genre](t, rec))

	rec = ts.do(http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/customers", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body.", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = ts.do(http.MethodPost, "/api/genres", `{"name":"Action"} trailing`, ts.token(false))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body.", rec.Body.String())

	genres, err := ts.store.ListGenres(t.Context())
	require.NoError(t, err)
	assert.Empty(t, genres)

	rec = ts.do(http.MethodPost, "/api/customers", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"name" is required`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.NoError(t, ts.store.Close())
	rec = ts.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodGet, "/api/genres/"+primitive.NewObjectID().Hex(), nil, "")

	rec := ts.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vidly_http_requests_total{method="GET",path="/api/genres/{id}",status="404"} 1`)
}

func TestTraceAndCORSHeaders(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/genres", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))
}
