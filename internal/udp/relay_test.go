package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOnce(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := uint16(listener.LocalAddr().(*net.UDPAddr).Port)

	relay := NewRelay()
	n, err := relay.SendOnce(context.Background(), "127.0.0.1", port, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 64)
	got, _, err := listener.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:got]))
}

func TestSendOnceInvalidAddress(t *testing.T) {
	relay := NewRelay()
	_, err := relay.SendOnce(context.Background(), "not a host name", 9999, []byte("x"))
	assert.Error(t, err)
}
