package broadcast

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/lei/ble-gateway/pkg/logger"
)

// BtmgmtRunner drives the BlueZ btmgmt management tool. The payload and
// instance id are passed as discrete argv elements, never through a shell,
// so payload content cannot alter the command structure.
type BtmgmtRunner struct {
	path    string
	timeout time.Duration
	logger  *logger.Logger
}

// NewBtmgmtRunner creates a runner invoking the btmgmt binary at path.
// Each invocation is bounded by timeout so a hung command cannot wedge an
// advertising instance.
func NewBtmgmtRunner(path string, timeout time.Duration, log *logger.Logger) *BtmgmtRunner {
	return &BtmgmtRunner{
		path:    path,
		timeout: timeout,
		logger:  log,
	}
}

// Start issues "btmgmt add-adv -d <payload> <instance>"
func (r *BtmgmtRunner) Start(ctx context.Context, instance int, payload string) error {
	return r.run(ctx, "add-adv", instance, "add-adv", "-d", payload, strconv.Itoa(instance))
}

// Stop issues "btmgmt rm-adv <instance>"
func (r *BtmgmtRunner) Stop(ctx context.Context, instance int) error {
	return r.run(ctx, "rm-adv", instance, "rm-adv", strconv.Itoa(instance))
}

func (r *BtmgmtRunner) run(ctx context.Context, op string, instance int, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CommandError{
			Op:       op,
			Instance: instance,
			Output:   string(output),
			Err:      err,
		}
	}

	r.logger.Debug("btmgmt command succeeded",
		"op", op,
		"instance", instance,
		"output", string(output))
	return nil
}
