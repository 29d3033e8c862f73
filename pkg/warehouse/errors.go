package warehouse

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/lib/pq"

	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// pqAuthClass is the PostgreSQL error class for invalid authorization.
const pqAuthClass = "28"

// classifyCtx classifies an error from a context-bounded call. The
// context's own verdict wins: drivers report an expired deadline with
// their own cancellation errors (pq says "canceling statement due to user
// request"), and the deadline is what actually ended the call.
func classifyCtx(ctx context.Context, err error) query.ErrorKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return query.TimeoutError
	}
	return classify(err)
}

// classify maps a driver error onto the executor's failure taxonomy.
// Typed errors are checked first; string matching is the fallback for
// drivers that surface HTTP-level failures as plain error text.
func classify(err error) query.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return query.TimeoutError
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == pqAuthClass {
			return query.AuthError
		}
		return query.ExecutionError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return query.TimeoutError
		}
		return query.ConnectionError
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return query.ConnectionError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case hasAny(msg, "connection refused", "connection reset", "no such host", "broken pipe", "server closed"):
		return query.ConnectionError
	case hasAny(msg, "authentication", "access denied", "unauthorized", "invalid credentials", "401", "403"):
		return query.AuthError
	case hasAny(msg, "timeout", "deadline exceeded"):
		return query.TimeoutError
	default:
		return query.ExecutionError
	}
}

// hasAny reports whether s contains any of the substrings.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
