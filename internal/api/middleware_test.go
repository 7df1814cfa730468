package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/ble-gateway/internal/auth"
	"github.com/lei/ble-gateway/internal/broadcast"
	"github.com/lei/ble-gateway/internal/udp"
	"github.com/lei/ble-gateway/pkg/logger"
)

const testToken = "test-token"

func newTestRouter(t *testing.T, runner broadcast.Runner, token string) http.Handler {
	t.Helper()

	log := logger.New("error", "text")
	controller := broadcast.NewController(runner, time.Hour, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = controller.Shutdown(ctx)
	})

	handlers := NewHandlers(controller, udp.NewRelay(), broadcast.DefaultInstance)
	authMiddleware := NewAuthMiddleware(auth.NewGate(token))
	loggingMiddleware := NewLoggingMiddleware(log)

	return NewRouter(handlers, authMiddleware, loggingMiddleware)
}

func TestAuthRejectsBeforeAnySideEffect(t *testing.T) {
	runner := &recordingRunner{}
	router := newTestRouter(t, runner, testToken)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic test-token"},
		{name: "wrong token", header: "Bearer wrong-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/broadcast", strings.NewReader(`{"data":"AABBCC","duration":5}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// no start command was ever invoked
	assert.Zero(t, runner.startCount())
}

func TestAuthFailsClosedWhenUnconfigured(t *testing.T) {
	runner := &recordingRunner{}
	router := newTestRouter(t, runner, "")

	req := httptest.NewRequest("POST", "/broadcast", strings.NewReader(`{"data":"AABBCC","duration":5}`))
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, runner.startCount())
}

func TestLivenessEndpointsNeedNoAuth(t *testing.T) {
	router := newTestRouter(t, &recordingRunner{}, testToken)

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}

func TestStatusEndpointRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &recordingRunner{}, testToken)

	req := httptest.NewRequest("GET", "/broadcast/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/broadcast/status", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
