package sonar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer serves the two measures endpoints from canned data.
type fakeServer struct {
	history map[string][]map[string]string // metric -> [{date, value}]
	files   []FileMeasures
	queries []string
	user    string
}

func (f *fakeServer) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/measures", func(r chi.Router) {
		r.Get("/search_history", f.searchHistory)
		r.Get("/component_tree", f.componentTree)
	})
	return r
}

func (f *fakeServer) searchHistory(w http.ResponseWriter, r *http.Request) {
	f.queries = append(f.queries, r.URL.RawQuery)
	f.user, _, _ = r.BasicAuth()

	q := r.URL.Query()
	if q.Get("component") == "missing" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"msg":"Component key 'missing' not found"}]}`))
		return
	}

	type point struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	}
	type measure struct {
		Metric  string  `json:"metric"`
		History []point `json:"history"`
	}
	var measures []measure
	for metric, points := range f.history {
		m := measure{Metric: metric}
		for _, p := range points {
			m.History = append(m.History, point{Date: p["date"], Value: p["value"]})
		}
		measures = append(measures, m)
	}
	writeJSON(w, map[string]any{"paging": map[string]int{"pageIndex": 1, "pageSize": 100, "total": len(measures)}, "measures": measures})
}

func (f *fakeServer) componentTree(w http.ResponseWriter, r *http.Request) {
	f.queries = append(f.queries, r.URL.RawQuery)
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("p"))
	size, _ := strconv.Atoi(q.Get("ps"))
	// Serve two files per page regardless of ps, to exercise paging.
	size = min(size, 2)

	startIdx := (page - 1) * size
	end := min(startIdx+size, len(f.files))
	var comps []map[string]any
	for _, fm := range f.files[min(startIdx, len(f.files)):end] {
		var ms []Measure
		for k, v := range fm.Measures {
			ms = append(ms, Measure{Metric: k, Value: v})
		}
		comps = append(comps, map[string]any{"key": fm.Key, "path": fm.Path, "qualifier": "FIL", "measures": ms})
	}
	writeJSON(w, map[string]any{
		"paging":     map[string]int{"pageIndex": page, "pageSize": size, "total": len(f.files)},
		"components": comps,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "squ_token")
}

func TestClient_MeasuresAt(t *testing.T) {
	f := &fakeServer{history: map[string][]map[string]string{
		"coverage": {
			{"date": "2024-01-02T09:00:00+0000", "value": "71.0"},
			{"date": "2024-01-02T18:00:00+0000", "value": "72.5"},
		},
		"bugs":  {{"date": "2024-01-02T18:00:00+0000", "value": "3"}},
		"ncloc": {},
	}}
	c := newTestClient(t, f)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	got, err := c.MeasuresAt(context.Background(), "proj", day, []string{"coverage", "bugs", "ncloc"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"coverage": "72.5", "bugs": "3"}, got)
	assert.Equal(t, "squ_token", f.user)
	require.Len(t, f.queries, 1)
	assert.Contains(t, f.queries[0], "from=2024-01-02")
	assert.Contains(t, f.queries[0], "to=2024-01-02")
	assert.Contains(t, f.queries[0], "metrics=coverage%2Cbugs%2Cncloc")
}

func TestClient_MeasuresAtAPIError(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.MeasuresAt(context.Background(), "missing", time.Now(), []string{"bugs"})
	require.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Component key 'missing' not found")
}

func TestClient_ComponentTreeFollowsPages(t *testing.T) {
	f := &fakeServer{}
	for i := 0; i < 5; i++ {
		f.files = append(f.files, FileMeasures{
			Key:      fmt.Sprintf("proj:src/f%d.go", i),
			Path:     fmt.Sprintf("src/f%d.go", i),
			Measures: map[string]string{"ncloc": strconv.Itoa(10 * i)},
		})
	}
	c := newTestClient(t, f)

	got, err := c.ComponentTree(context.Background(), "proj", []string{"ncloc"})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "src/f4.go", got[4].Path)
	assert.Equal(t, "40", got[4].Measures["ncloc"])
	assert.Len(t, f.queries, 3)
	assert.Contains(t, f.queries[0], "qualifiers=FIL")
}

func TestClient_ComponentTreeEmpty(t *testing.T) {
	c := newTestClient(t, &fakeServer{})
	got, err := c.ComponentTree(context.Background(), "proj", []string{"ncloc"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_BadJSON(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/measures/search_history", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, err := NewClient(srv.URL, "").MeasuresAt(context.Background(), "proj", time.Now(), []string{"bugs"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing")
}
