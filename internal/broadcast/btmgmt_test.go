package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/ble-gateway/pkg/logger"
)

func TestBtmgmtRunnerErrorCarriesOpAndInstance(t *testing.T) {
	r := NewBtmgmtRunner("/nonexistent/btmgmt", time.Second, logger.New("error", "text"))

	var cmdErr *CommandError

	err := r.Start(context.Background(), 3, "AABBCC")
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "add-adv", cmdErr.Op)
	assert.Equal(t, 3, cmdErr.Instance)

	err = r.Stop(context.Background(), 7)
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "rm-adv", cmdErr.Op)
	assert.Equal(t, 7, cmdErr.Instance)
}
