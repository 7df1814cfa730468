package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lei/ble-gateway/internal/broadcast"
	"github.com/lei/ble-gateway/internal/udp"
)

// Handlers contains HTTP handler functions
type Handlers struct {
	controller *broadcast.Controller
	relay      *udp.Relay
	instance   int // advertising instance targeted by /broadcast
}

// NewHandlers creates a new handlers instance
func NewHandlers(controller *broadcast.Controller, relay *udp.Relay, instance int) *Handlers {
	return &Handlers{
		controller: controller,
		relay:      relay,
		instance:   instance,
	}
}

// Root handles GET /
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("BLE Broadcast Gateway - Use /broadcast or /udp endpoints\n"))
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Broadcast handles POST /broadcast. The request is validated and scheduled
// synchronously; the start/hold/stop sequence runs in the background and its
// outcome is only logged, never returned to this caller.
func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())

	var req struct {
		Data     string `json:"data"`
		Duration uint64 `json:"duration"` // seconds
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.Warn("invalid request body", "error", err)
		}
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// Reject oversized durations before the seconds-to-Duration conversion;
	// converting first would overflow int64 and can wrap into a small
	// positive hold that slips past the controller's cap.
	if req.Duration > uint64(h.controller.MaxHold()/time.Second) {
		handleControllerError(w, r, broadcast.ErrInvalidDuration)
		return
	}

	hold := time.Duration(req.Duration) * time.Second
	lifecycleID, err := h.controller.Broadcast(h.instance, req.Data, hold)
	if err != nil {
		handleControllerError(w, r, err)
		return
	}

	if logger != nil {
		logger.Info("broadcast accepted",
			"lifecycle_id", lifecycleID,
			"instance", h.instance,
			"duration_seconds", req.Duration)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"lifecycle_id": lifecycleID,
		"instance":     h.instance,
		"duration":     req.Duration,
	})
}

// BroadcastStatus handles GET /broadcast/status
func (h *Handlers) BroadcastStatus(w http.ResponseWriter, r *http.Request) {
	status := h.controller.Status(h.instance)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"slot": status,
	})
}

// SendUDP handles POST /udp
func (h *Handlers) SendUDP(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())

	var req struct {
		Address string `json:"address"`
		Port    uint16 `json:"port"`
		Data    string `json:"data"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.Warn("invalid request body", "error", err)
		}
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Address == "" || req.Port == 0 {
		respondError(w, r, http.StatusBadRequest, "address and port are required")
		return
	}

	bytesSent, err := h.relay.SendOnce(r.Context(), req.Address, req.Port, []byte(req.Data))
	if err != nil {
		if logger != nil {
			logger.Error("udp send failed",
				"address", req.Address,
				"port", req.Port,
				"error", err)
		}
		respondError(w, r, http.StatusInternalServerError, "udp send failed")
		return
	}

	if logger != nil {
		logger.Info("udp datagram sent",
			"address", req.Address,
			"port", req.Port,
			"bytes_sent", bytesSent)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bytes_sent": bytesSent,
	})
}

// respondError writes a JSON error response with logging
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	if logger != nil {
		logger.Error("returning error response",
			"status", status,
			"message", message,
			"request_id", requestID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message":    message,
			"code":       status,
			"request_id": requestID,
		},
	})
}

// handleControllerError maps controller errors to HTTP responses
func handleControllerError(w http.ResponseWriter, r *http.Request, err error) {
	logger := GetLogger(r.Context())
	if logger != nil {
		logger.Warn("broadcast rejected", "error", err)
	}

	switch {
	case errors.Is(err, broadcast.ErrInvalidPayload):
		respondError(w, r, http.StatusBadRequest, "payload must not contain control characters")
	case errors.Is(err, broadcast.ErrInvalidDuration):
		respondError(w, r, http.StatusBadRequest, "duration must be positive and within the configured maximum")
	case errors.Is(err, broadcast.ErrShuttingDown):
		respondError(w, r, http.StatusServiceUnavailable, "gateway is shutting down")
	default:
		respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
