package checkout

import "github.com/pkg/errors"

var (
	// ErrBusy rejects a second operation while one is already in flight for
	// the session.
	ErrBusy = errors.New("another request is already in flight")
	// ErrInvalidStep rejects an operation invoked from any step other than
	// its defined predecessor.
	ErrInvalidStep = errors.New("operation is not available in the current step")
	// ErrClosed rejects operations on an abandoned session.
	ErrClosed = errors.New("checkout session is closed")
	// ErrCompleted rejects closing a session that already reached success.
	ErrCompleted = errors.New("checkout already completed")
)
