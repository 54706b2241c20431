package master

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies fetch failures. The scheduler only ever retries at
// the next interval, so the kind is informational (logging, tests).
type FailureKind int

const (
	// Unreachable covers network-level failures: refused, no route, DNS.
	Unreachable FailureKind = iota
	// Timeout means the peer did not answer within the socket deadline.
	Timeout
	// Malformed means the peer answered with bytes we could not parse.
	Malformed
)

func (k FailureKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// QueryError is the only error type FetchServers returns.
type QueryError struct {
	Kind FailureKind
	Addr string // peer we were talking to
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// classify wraps a network error, deriving the kind from its cause.
func classify(addr string, err error) *QueryError {
	kind := Unreachable
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		kind = Timeout
	} else if errors.Is(err, context.DeadlineExceeded) {
		kind = Timeout
	}
	return &QueryError{Kind: kind, Addr: addr, Err: err}
}

// malformed tags a parse failure.
func malformed(addr, format string, args ...any) *QueryError {
	return &QueryError{Kind: Malformed, Addr: addr, Err: fmt.Errorf(format, args...)}
}
