package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/store"
)

const pageHTML = `<html><head><title>Garden Notes</title><meta name="author" content="Lee Park"></head>
<body><article><h1>Growing Tomatoes</h1>
<p>Tomatoes need at least six hours of direct sunlight each day.
Water the plants deeply but not too often during summer.
Mulch keeps the soil moist and prevents weeds from spreading.
Stake or cage tall varieties before the fruit gets heavy.
Pick ripe tomatoes often so the plant keeps producing more.</p>
</article></body></html>`

const sampleText = "Rivers carve valleys over thousands of years of steady flow. " +
	"Floods deposit rich soil across the wide valley floor. " +
	"Farmers settled near rivers because the soil was fertile. " +
	"Dams now control many rivers and store water for cities. " +
	"Fish ladders help salmon pass the dams on their way upstream."

func newTestServer(t *testing.T, apiKey string) (*Server, *httptest.Server) {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tomatoes":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(pageHTML))
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(site.Close)

	tmp := t.TempDir()
	cfg := app.DefaultConfig()
	cfg.DataDir = filepath.Join(tmp, "data")
	cfg.CacheDir = filepath.Join(tmp, "cache")
	cfg.FetchRate = 0
	cfg.FetchAttempts = 1
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return NewServer(a, zerolog.Nop(), apiKey), site
}

func do(t *testing.T, s *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if str, ok := body.(string); ok {
			buf.WriteString(str)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	rec := do(t, s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSummarize(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, http.MethodPost, "/api/summarize", map[string]any{
		"text":          sampleText,
		"min_sentences": 2,
		"ratio":         0.2,
		"keywords":      2,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Summary       string         `json:"summary"`
		SentenceCount int            `json:"sentence_count"`
		WordCount     int            `json:"word_count"`
		Fallback      bool           `json:"fallback"`
		Keywords      []string       `json:"keywords"`
		Stats         map[string]any `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.SentenceCount)
	assert.NotEmpty(t, out.Summary)
	assert.Greater(t, out.WordCount, 0)
	assert.False(t, out.Fallback)
	assert.Len(t, out.Keywords, 2)
	assert.Contains(t, out.Stats, "compression_ratio")
}

func TestSummarize_EmptyText(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, http.MethodPost, "/api/summarize", map[string]any{"text": "   "}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary":""`)
	assert.Contains(t, rec.Body.String(), `"sentence_count":0`)
}

func TestSummarize_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, "")
	cases := map[string]any{
		"bad ratio":    map[string]any{"text": sampleText, "ratio": 1.5},
		"bad strategy": map[string]any{"text": sampleText, "strategy": "neural"},
		"bad minimum":  map[string]any{"text": sampleText, "min_sentences": -1},
		"bad keywords": map[string]any{"text": sampleText, "keywords": -3},
		"bad json":     "{not json",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/summarize", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestArticles_CreateListStats(t *testing.T) {
	s, site := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/articles", map[string]string{"url": site.URL + "/tomatoes"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created store.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Growing Tomatoes", created.Title)
	assert.Equal(t, "Lee Park", created.Author)
	assert.NotEmpty(t, created.Summary)

	rec = do(t, s, http.MethodGet, "/api/articles?author=lee", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Articles []store.Record `json:"articles"`
		Count    int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, created.ID, listed.Articles[0].ID)

	rec = do(t, s, http.MethodGet, "/api/articles?title=cucumber", nil, nil)
	assert.Contains(t, rec.Body.String(), `"articles":[]`)

	rec = do(t, s, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals store.Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, 1, totals.Articles)
	assert.Equal(t, 1, totals.UniqueAuthors)
}

func TestArticles_ErrorStatuses(t *testing.T) {
	s, site := newTestServer(t, "")
	tests := []struct {
		body any
		want int
	}{
		{map[string]string{"url": ""}, http.StatusBadRequest},
		{map[string]string{"url": "mailto:someone@example.com"}, http.StatusBadRequest},
		{map[string]string{"url": site.URL + "/broken"}, http.StatusBadGateway},
		{map[string]string{"url": site.URL + "/image"}, http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/api/articles", tt.body, nil)
		assert.Equal(t, tt.want, rec.Code, "%v: %s", tt.body, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, "s3cret")

	rec := do(t, s, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/stats", nil, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid api key"))

	rec = do(t, s, http.MethodGet, "/api/stats", nil, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
