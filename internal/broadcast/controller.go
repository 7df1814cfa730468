// Package broadcast owns the timed lifecycle of BLE advertising instances:
// it validates broadcast requests, serializes access to each hardware
// advertising slot, and drives the external start/stop commands from a
// background task decoupled from the HTTP caller.
package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lei/ble-gateway/pkg/logger"
)

// DefaultInstance is the advertising instance used when none is configured
const DefaultInstance = 1

var (
	// ErrInvalidPayload indicates the payload contains control characters
	ErrInvalidPayload = errors.New("payload contains control characters")

	// ErrInvalidDuration indicates the hold duration is zero or exceeds the
	// configured maximum
	ErrInvalidDuration = errors.New("invalid broadcast duration")

	// ErrShuttingDown indicates the controller no longer accepts requests
	ErrShuttingDown = errors.New("controller is shutting down")
)

// SlotState describes what an advertising instance is currently doing
type SlotState string

const (
	SlotIdle        SlotState = "idle"
	SlotAdvertising SlotState = "advertising"
)

// SlotStatus is a point-in-time snapshot of one advertising instance
type SlotStatus struct {
	Instance    int        `json:"instance"`
	State       SlotState  `json:"state"`
	Payload     string     `json:"payload,omitempty"`
	HeldUntil   *time.Time `json:"held_until,omitempty"`
	LifecycleID string     `json:"lifecycle_id,omitempty"`
}

// slot tracks one hardware advertising instance. lifecycleMu serializes
// whole start/hold/stop lifecycles; stateMu guards the snapshot fields so
// Status never blocks behind an in-flight hold.
type slot struct {
	instance int

	lifecycleMu sync.Mutex

	stateMu     sync.Mutex
	state       SlotState
	payload     string
	heldUntil   time.Time
	lifecycleID string
}

func (s *slot) setAdvertising(lifecycleID, payload string, heldUntil time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = SlotAdvertising
	s.payload = payload
	s.heldUntil = heldUntil
	s.lifecycleID = lifecycleID
}

func (s *slot) setIdle() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = SlotIdle
	s.payload = ""
	s.heldUntil = time.Time{}
	s.lifecycleID = ""
}

func (s *slot) status() SlotStatus {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st := SlotStatus{
		Instance:    s.instance,
		State:       s.state,
		Payload:     s.payload,
		LifecycleID: s.lifecycleID,
	}
	if s.state == SlotAdvertising {
		heldUntil := s.heldUntil
		st.HeldUntil = &heldUntil
	}
	return st
}

// Controller coordinates timed advertisements across advertising instances.
// Overlapping requests against the same instance serialize: each accepted
// lifecycle queues behind the previous one's stop, so advertisements never
// overlap on the shared slot and every successful start is paired with
// exactly one stop.
type Controller struct {
	runner  Runner
	logger  *logger.Logger
	maxHold time.Duration

	mu    sync.Mutex
	slots map[int]*slot

	// shutdownMu makes the shutdown check and the WaitGroup Add atomic with
	// respect to Shutdown's cancel, so no lifecycle can be scheduled after
	// Shutdown has begun waiting.
	shutdownMu sync.Mutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewController creates a controller. maxHold caps the duration of a single
// broadcast; zero means a one-hour default.
func NewController(runner Runner, maxHold time.Duration, log *logger.Logger) *Controller {
	if maxHold <= 0 {
		maxHold = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		runner:  runner,
		logger:  log,
		maxHold: maxHold,
		slots:   make(map[int]*slot),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Broadcast validates the request and schedules the start/hold/stop
// lifecycle on a background task. It returns the lifecycle id as soon as
// the work is scheduled; command failures inside the lifecycle are logged,
// never returned.
func (c *Controller) Broadcast(instance int, payload string, hold time.Duration) (string, error) {
	if containsControl(payload) {
		return "", ErrInvalidPayload
	}
	if hold <= 0 || hold > c.maxHold {
		return "", ErrInvalidDuration
	}

	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()
	if c.ctx.Err() != nil {
		return "", ErrShuttingDown
	}

	id := uuid.NewString()
	c.wg.Add(1)
	go c.lifecycle(id, instance, payload, hold)

	return id, nil
}

// Status reports the current state of an advertising instance
func (c *Controller) Status(instance int) SlotStatus {
	return c.slot(instance).status()
}

// MaxHold returns the configured per-broadcast duration cap
func (c *Controller) MaxHold() time.Duration {
	return c.maxHold
}

// Shutdown stops accepting new broadcasts, interrupts pending holds, and
// waits for in-flight lifecycles to finish their best-effort teardown. A
// lifecycle whose hold is cut short still issues its stop command so the
// process never exits leaving a live advertisement.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.shutdownMu.Lock()
	c.cancel()
	c.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) slot(instance int) *slot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[instance]
	if !ok {
		s = &slot{instance: instance, state: SlotIdle}
		c.slots[instance] = s
	}
	return s
}

// lifecycle runs start -> hold -> stop while exclusively holding the slot.
// The lock covers the whole sequence, so concurrent lifecycles against the
// same instance queue rather than interleave; validation and acceptance of
// new requests never touch this lock.
func (c *Controller) lifecycle(id string, instance int, payload string, hold time.Duration) {
	defer c.wg.Done()

	log := c.logger.With("lifecycle_id", id, "instance", instance)

	s := c.slot(instance)
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if err := c.runner.Start(c.ctx, instance, payload); err != nil {
		// nothing was started, so there is nothing to stop
		log.Error("failed to start advertisement", "error", err)
		return
	}

	s.setAdvertising(id, payload, time.Now().Add(hold))
	log.Info("advertisement started", "hold_seconds", hold.Seconds())

	timer := time.NewTimer(hold)
	select {
	case <-timer.C:
	case <-c.ctx.Done():
		timer.Stop()
		log.Warn("hold interrupted by shutdown, tearing down early")
	}

	// Teardown must survive shutdown cancellation; the runner bounds the
	// command with its own timeout.
	if err := c.runner.Stop(context.Background(), instance); err != nil {
		// The hardware may still be advertising even though the slot is
		// released; the slot must not stay wedged behind a failed stop.
		log.Error("failed to stop advertisement, instance may still be live", "error", err)
	} else {
		log.Info("advertisement stopped")
	}

	s.setIdle()
}

func containsControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
