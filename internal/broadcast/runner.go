package broadcast

import (
	"context"
	"fmt"
	"strings"
)

// Runner abstracts the external advertising-control commands. Start begins
// advertising the payload on the given instance; Stop removes whatever the
// instance is currently advertising. Both report failure through the
// returned error, typically a *CommandError carrying the captured output.
type Runner interface {
	Start(ctx context.Context, instance int, payload string) error
	Stop(ctx context.Context, instance int) error
}

// CommandError represents a failed external command invocation
type CommandError struct {
	Op       string // "add-adv" or "rm-adv"
	Instance int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("btmgmt %s (instance %d): %v", e.Op, e.Instance, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
