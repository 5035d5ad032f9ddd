package session

import (
	"errors"
	"fmt"
)

// ErrNoPeerAddr is returned when the transport can not report the remote address.
var ErrNoPeerAddr = errors.New("peer address unavailable")

// ConnectionError wraps a failure to set up a single connection.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
