package mapi

import (
	"context"
	"net"
	"time"
)

// DialerOptions carries the parameters a Dialer may need.
type DialerOptions struct {
	Timeout      time.Duration
	TCPKeepAlive time.Duration
}

// Dialer abstracts the creation of the raw transport connection so that
// embedders can substitute a proxy, a test harness, or a TLS-wrapped
// socket without this package needing to know about TLS setup (spec §1
// lists TLS setup of the underlying socket as an external collaborator
// concern).
type Dialer interface {
	DialContext(ctx context.Context, address string, options DialerOptions) (net.Conn, error)
}

// DefaultDialer is the Dialer used when a Config does not set one.
var DefaultDialer Dialer = &defaultDialer{}

type defaultDialer struct{}

func (d *defaultDialer) DialContext(ctx context.Context, address string, options DialerOptions) (net.Conn, error) {
	dialer := net.Dialer{Timeout: options.Timeout, KeepAlive: options.TCPKeepAlive}
	return dialer.DialContext(ctx, "tcp", address)
}
