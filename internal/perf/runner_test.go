package perf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsBatchesUntilDeadline(t *testing.T) {
	var calls atomic.Int64
	r := Runner{Users: 3, Duration: 30 * time.Millisecond, Pause: 5 * time.Millisecond}

	results := r.Run(context.Background(), func(ctx context.Context, user int) []Result {
		calls.Add(1)
		time.Sleep(2 * time.Millisecond)
		return []Result{ok("op", 1)}
	})

	require.NotEmpty(t, results)
	assert.Equal(t, int(calls.Load()), len(results))
	assert.Zero(t, len(results)%3, "每批都应完整执行")
}

func TestRunner_RecoversPanics(t *testing.T) {
	r := Runner{Users: 2, Duration: 20 * time.Millisecond}
	results := r.Run(context.Background(), func(ctx context.Context, user int) []Result {
		panic("boom")
	})
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.Equal(t, "batch_error", res.Operation)
		assert.False(t, res.Success)
		assert.Equal(t, "boom", res.Error)
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := Runner{Users: 1, Duration: time.Hour, Pause: time.Millisecond}

	done := make(chan []Result)
	go func() {
		done <- r.Run(ctx, func(ctx context.Context, user int) []Result { return []Result{ok("op", 1)} })
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case results := <-done:
		assert.NotEmpty(t, results)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func newStubServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	var registered atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !strings.HasPrefix(body["username"], "testuser_") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		registered.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/api/v1/auth/login-json", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "admin" && body["password"] != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"message":"incorrect username or password"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	for _, p := range []string{"/api/v1/search/papers", "/api/v1/search/authors", "/api/v1/search/suggestions", "/api/v1/external/papers"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &registered
}

func TestAuthScenario(t *testing.T) {
	srv, registered := newStubServer(t)
	c := NewClient(srv.URL, time.Second)

	results := AuthScenario(c, "admin", "admin123")(context.Background(), 7)
	require.Len(t, results, 3)
	assert.Equal(t, "register", results[0].Operation)
	assert.Equal(t, http.StatusCreated, results[0].StatusCode)
	for _, r := range results {
		assert.True(t, r.Success, r.Operation)
		assert.GreaterOrEqual(t, r.LatencyMS, 0.0)
	}
	assert.EqualValues(t, 1, registered.Load())

	results = AuthScenario(c, "admin", "wrong")(context.Background(), 8)
	last := results[len(results)-1]
	assert.False(t, last.Success)
	assert.Equal(t, http.StatusUnauthorized, last.StatusCode)
	assert.Contains(t, last.Error, "incorrect username or password")
}

func TestSearchScenario(t *testing.T) {
	srv, _ := newStubServer(t)
	c := NewClient(srv.URL, time.Second)

	results := SearchScenario(c, 1)(context.Background(), 0)
	require.Len(t, results, 4)
	ops := []string{results[0].Operation, results[1].Operation, results[2].Operation, results[3].Operation}
	assert.Equal(t, []string{"search_papers", "search_authors", "get_suggestions", "search_external"}, ops)
	for _, r := range results {
		assert.True(t, r.Success, r.Operation)
		assert.NotEmpty(t, r.Query)
	}
	assert.Contains(t, PaperQueries, results[0].Query)
	assert.Contains(t, AuthorQueries, results[1].Query)
	assert.LessOrEqual(t, len([]rune(results[2].Query)), 5)

	assert.Len(t, SearchScenario(c, 0)(context.Background(), 0), 3)
}

func TestClient_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	res := NewClient(srv.URL, time.Second).Do(context.Background(), "probe", http.MethodGet, "/health", nil, nil, http.StatusOK)
	assert.False(t, res.Success)
	assert.Zero(t, res.StatusCode)
	assert.NotEmpty(t, res.Error)
}
