package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/crisis"
	"github.com/spacesedan/mindnest/internal/db"
	"github.com/spacesedan/mindnest/internal/journal"
	"github.com/spacesedan/mindnest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPublisher struct {
	mu       sync.Mutex
	requests []models.JournalRequest
}

func (p *recordingPublisher) PublishRequest(_ context.Context, req models.JournalRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return nil
}

func (p *recordingPublisher) PublishAnalyzed(context.Context, models.JournalAnalyzedEvent) error {
	return nil
}

type testServer struct {
	router    *gin.Engine
	store     *db.MemoryJournalStore
}

func newTestServer(t *testing.T, opts ...journal.Option) *testServer {
	t.Helper()

	catalog, err := crisis.Load()
	require.NoError(t, err)

	store := db.NewMemoryJournalStore()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]journal.Option{journal.WithClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	})}, opts...)

	return &testServer{
		router: NewRouter(Dependencies{
			Journal: journal.NewService(store, opts...),
			Crisis:  catalog,
			Google:  config.GoogleSettings{ClientID: "id", SiteURL: "https://mindnest.example"},
		}),
		store: store,
	}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestSubmitJournal_SignedIn(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "I feel happy and grateful today"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])

	data := out["data"].(map[string]any)
	assert.Equal(t, true, data["saved"])
	assert.Equal(t, "heuristic", data["source"])
	assert.Equal(t, "en", data["language"])
	assert.NotEmpty(t, data["entryId"])
	assert.Greater(t, data["moodScore"].(float64), 0.0)

	entries, err := s.store.QueryEntries(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitJournal_Guest(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/journals", "", gin.H{"text": "मैं आज बहुत खुश हूँ"})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := out["data"].(map[string]any)
	assert.Equal(t, false, data["saved"])
	assert.Equal(t, "hi", data["language"])
	assert.NotContains(t, data, "entryId")
}

func TestSubmitJournal_CrisisAlert(t *testing.T) {
	s := newTestServer(t)

	_, out := s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "sad lonely depressed awful"})
	data := out["data"].(map[string]any)
	assert.Equal(t, true, data["crisisAlert"])
	assert.Less(t, data["moodScore"].(float64), -0.6)
}

func TestSubmitJournal_BadRequests(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "text is required", out["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/journals", bytes.NewBufferString("{"))
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestSubmitJournal_Async(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t)
		rec, _ := s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "hello", "async": true})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("guest", func(t *testing.T) {
		s := newTestServer(t, journal.WithPublisher(&recordingPublisher{}))
		rec, _ := s.do(t, http.MethodPost, "/api/journals", "", gin.H{"text": "hello", "async": true})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("queued", func(t *testing.T) {
		pub := &recordingPublisher{}
		s := newTestServer(t, journal.WithPublisher(pub))
		rec, out := s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "hello", "async": true, "language": "ta"})
		require.Equal(t, http.StatusAccepted, rec.Code)

		data := out["data"].(map[string]any)
		require.Len(t, pub.requests, 1)
		assert.Equal(t, pub.requests[0].RequestID, data["requestId"])
		assert.Equal(t, "ta", pub.requests[0].Language)
	})
}

func TestReadEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "great day, happy"})
	s.do(t, http.MethodPost, "/api/journals", "u1", gin.H{"text": "tired and sad"})

	rec, out := s.do(t, http.MethodGet, "/api/journals", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := out["data"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "tired and sad", entries[0].(map[string]any)["text"])

	_, out = s.do(t, http.MethodGet, "/api/mood", "u1", nil)
	points := out["data"].([]any)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-03-01", points[0].(map[string]any)["date"])

	_, out = s.do(t, http.MethodGet, "/api/dashboard", "u1", nil)
	dash := out["data"].(map[string]any)
	assert.Equal(t, float64(2), dash["totalEntries"])
	assert.Len(t, dash["days"], 1)

	_, out = s.do(t, http.MethodGet, "/api/journals", "", nil)
	assert.Equal(t, []any{}, out["data"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/analyze", "", gin.H{"text": "happy happy joy"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := out["data"].(map[string]any)
	assert.Contains(t, data["reflection"], "happy")
	assert.Greater(t, data["moodScore"].(float64), 0.0)

	entries, err := s.store.QueryEntries(context.Background(), "", true)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCrisisResourcesEndpoint(t *testing.T) {
	s := newTestServer(t)

	_, out := s.do(t, http.MethodGet, "/api/crisis/resources?country=US", "", nil)
	data := out["data"].(map[string]any)
	assert.Equal(t, "US", data["country"])

	_, out = s.do(t, http.MethodGet, "/api/crisis/resources?country=XX", "", nil)
	data = out["data"].(map[string]any)
	assert.Equal(t, "IN", data["country"])
	assert.Equal(t, "112", data["helplines"].(map[string]any)["emergency"])
}

func TestGoogleStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	_, out := s.do(t, http.MethodGet, "/api/config/google", "", nil)
	data := out["data"].(map[string]any)
	assert.Equal(t, true, data["hasClientId"])
	assert.Equal(t, false, data["hasClientSecret"])
	assert.Equal(t, "https://mindnest.example/api/auth/callback/google", data["redirectUri"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "heuristic", out["reflector"])
	assert.Equal(t, true, out["reflectorHealthy"])
}

func TestProxySecret(t *testing.T) {
	catalog, err := crisis.Load()
	require.NoError(t, err)
	store := db.NewMemoryJournalStore()
	require.NoError(t, store.PutEntry(context.Background(), models.JournalEntry{UserID: "u1", EntryID: "e1", CreatedAt: 1, Text: "private"}))

	router := NewRouter(Dependencies{
		Journal:     journal.NewService(store),
		Crisis:      catalog,
		ProxySecret: "s3cret",
	})

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"missing secret", "", http.StatusUnauthorized},
		{"wrong secret", "guess", http.StatusUnauthorized},
		{"proxy secret", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/journals", nil)
			req.Header.Set(UserIDHeader, "u1")
			if tt.secret != "" {
				req.Header.Set(ProxySecretHeader, tt.secret)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotContains(t, rec.Body.String(), "private")
				assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
