package widget

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks network failures and responses that are not JSON.
	ErrTransport = errors.New("transport failure")
	// ErrApplication marks responses with success:false.
	ErrApplication = errors.New("application failure")

	ErrNoSession      = errors.New("no session: Start has not succeeded")
	ErrClosed         = errors.New("widget closed")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrBusy           = errors.New("an exchange is already in flight")
	ErrAlreadyStarted = errors.New("session already started")
)

// TransportError wraps the underlying network or decode failure of one call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ApplicationError carries the server's error text.
type ApplicationError struct {
	Op      string
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server reported failure (status %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

func (e *ApplicationError) Unwrap() error {
	return ErrApplication
}
