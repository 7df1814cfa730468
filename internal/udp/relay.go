// Package udp provides the one-shot datagram relay exposed through the
// gateway's /udp endpoint.
package udp

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Relay sends single UDP datagrams. It is stateless; every send opens its
// own socket and makes exactly one attempt.
type Relay struct{}

// NewRelay creates a relay
func NewRelay() *Relay {
	return &Relay{}
}

// SendOnce sends payload to address:port and returns the number of bytes
// written. No retry is attempted.
func (r *Relay) SendOnce(ctx context.Context, address string, port uint16, payload []byte) (int, error) {
	var d net.Dialer

	target := net.JoinHostPort(address, strconv.Itoa(int(port)))
	conn, err := d.DialContext(ctx, "udp", target)
	if err != nil {
		return 0, fmt.Errorf("dial udp %s: %w", target, err)
	}
	defer conn.Close()

	n, err := conn.Write(payload)
	if err != nil {
		return n, fmt.Errorf("send udp to %s: %w", target, err)
	}
	return n, nil
}
