package api

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-pet/internal/pet"
)

func TestRequestIDGenerated(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, testBase+RouteState, "")
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestRequestIDEchoed(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, testBase+RouteState, nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	h := NewRouter(NewHandler(pet.NewStore(), logger), RouterConfig{BasePath: testBase}, logger)

	do(t, h, http.MethodPost, testBase+RouteAddHeart, "")

	out := buf.String()
	assert.Contains(t, out, "request")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "status=200")
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(NewHandler(pet.NewStore(), discardLogger()),
		RouterConfig{BasePath: testBase, AllowedOrigins: []string{"http://localhost:5173"}},
		discardLogger())

	req := httptest.NewRequest(http.MethodOptions, testBase+RouteState, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestCORSWildcard(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, testBase+RouteState, nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := NewRouter(NewHandler(pet.NewStore(), discardLogger()),
		RouterConfig{BasePath: testBase, AllowedOrigins: []string{"http://localhost:5173"}},
		discardLogger())

	req := httptest.NewRequest(http.MethodGet, testBase+RouteState, nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// panicService panics on every read.
type panicService struct{ *pet.Store }

func (panicService) State() pet.State { panic("boom") }

func TestRecoverFromPanic(t *testing.T) {
	h := NewRouter(NewHandler(panicService{pet.NewStore()}, discardLogger()),
		RouterConfig{BasePath: testBase}, discardLogger())

	rec := do(t, h, http.MethodGet, testBase+RouteState, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternalError, decodeState(t, rec).Error)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	h, _ := newTestRouter(t)
	srv := NewServer(ServerConfig{ShutdownTimeout: time.Second}, h, discardLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + testBase + RouteState)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
