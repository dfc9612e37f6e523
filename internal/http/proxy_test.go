package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadtrack-miniapp/internal/common/config"
)

// closeNotifyRecorder нужен для go <= 1.21: ReverseProxy там обращается к
// http.CloseNotifier, которого нет у httptest.ResponseRecorder.
type closeNotifyRecorder struct{ *httptest.ResponseRecorder }

func (closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func newTestConfig(upstream string) *config.Config {
	cfg := &config.Config{}
	cfg.Supabase.URL = upstream
	cfg.Supabase.ServiceRoleKey = "secret-key"
	cfg.Proxy.AllowedOrigins = []string{"http://localhost:5173"}
	return cfg
}

func TestHealthEndpoint(t *testing.T) {
	router, err := NewRouter(newTestConfig("http://localhost:9"), nil, zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestProxyInjectsKeysAndRewritesPath(t *testing.T) {
	var captured *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	router, err := NewRouter(newTestConfig(upstream.URL), nil, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/supabase/rest/v1/lessons?select=%2A", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(closeNotifyRecorder{rec}, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "/rest/v1/lessons", captured.URL.Path, "proxy prefix is stripped")
	assert.Equal(t, "secret-key", captured.Header.Get("apikey"), "key injected from config")
	assert.Equal(t, "Bearer secret-key", captured.Header.Get("Authorization"))
}

func TestProxyUpstreamDown(t *testing.T) {
	// Адрес без слушателя
	router, err := NewRouter(newTestConfig("http://127.0.0.1:1"), nil, zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(closeNotifyRecorder{rec}, httptest.NewRequest(http.MethodGet, "/api/supabase/rest/v1/users", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router, err := NewRouter(newTestConfig("http://localhost:9"), nil, zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
