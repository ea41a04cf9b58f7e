// Package device describes the narrow contract the sample pipeline needs from a
// line-oriented connection. Concrete transports live elsewhere.
package device

import (
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned by Conn.ReadLine when the read timeout elapsed before a
// complete line arrived. It is not a failure.
var ErrTimeout = errors.New("read timeout")

// Conn is an open line-oriented connection.
type Conn interface {
	// ReadLine returns the next line without its terminator.
	ReadLine() (string, error)
	// Close releases the connection. It must be safe to call more than once and
	// from another goroutine, and must unblock a pending ReadLine.
	Close() error
}

// Opener opens a named connection at the given line rate.
type Opener interface {
	Open(name string, baud int, readTimeout time.Duration) (Conn, error)
}

// Enumerator lists connections that can currently be opened.
type Enumerator interface {
	Ports() ([]string, error)
}
