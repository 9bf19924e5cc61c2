package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCorrelation_AssignsFreshIDPerRequest(t *testing.T) {
	var seen []string
	h := Correlation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, RequestID(r.Context()))
	}))

	var headers []string
	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "client-chosen")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		headers = append(headers, w.Header().Get(RequestIDHeader))
	}

	require.Len(t, seen, 3)
	assert.Equal(t, headers, seen)
	assert.NotEqual(t, seen[0], seen[1])
	assert.NotEqual(t, seen[1], seen[2])
	assert.NotContains(t, seen, "client-chosen")
}

func TestAccessLog_WritesBeforeHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var linesAtHandler int
	h := Correlation(AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		linesAtHandler = logs.Len()
	})))

	r := httptest.NewRequest(http.MethodGet, "/products?name=A", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, 1, linesAtHandler)
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, w.Header().Get(RequestIDHeader), fields["request_id"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/products?name=A", fields["path"])
}

func TestRecoverer_NormalizesPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Correlation(Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Internal server error"`)
	assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRecoverer_DoesNotWriteTwice(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"no token configured", "", "Bearer x", http.StatusForbidden},
		{"missing header", "secret", "", http.StatusForbidden},
		{"wrong token", "secret", "Bearer nope", http.StatusForbidden},
		{"valid", "secret", "Bearer secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			MetricsAuth(tc.token)(ok).ServeHTTP(w, r)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
