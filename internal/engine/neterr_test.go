package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestTransportReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"wrapped deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"dns", &net.DNSError{Err: "no such host", Name: "www.googleapis.com"}, "dns"},
		{"dns timeout", &net.DNSError{IsTimeout: true}, "timeout"},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, "connection"},
		{"op timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, "timeout"},
		{"net timeout", timeoutErr{}, "timeout"},
		{"regular error", errors.New("something"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransportReason(tt.err); got != tt.want {
				t.Errorf("TransportReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
