package broadcast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandError(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := &CommandError{
		Op:       "add-adv",
		Instance: 1,
		Output:   "Invalid Parameters\n",
		Err:      underlying,
	}

	assert.Equal(t, "btmgmt add-adv (instance 1): exit status 1: Invalid Parameters", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestCommandErrorWithoutOutput(t *testing.T) {
	underlying := errors.New("executable file not found in $PATH")
	err := &CommandError{Op: "rm-adv", Instance: 2, Err: underlying}

	assert.Equal(t, "btmgmt rm-adv (instance 2): executable file not found in $PATH", err.Error())
}
