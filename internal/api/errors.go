package api

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse matches any MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed response from tracking service")

// ServiceError is a non-2xx answer or a transport failure (Status 0).
// Message is the service's "error" field and may be blank.
type ServiceError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: service returned %d", e.Op, e.Status)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// MalformedResponseError is a 2xx answer whose body couldn't be understood.
// It fails the one operation and nothing else.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// UserMessage picks the one line to show for a failed call: the service's own
// error text when it sent one, the fallback otherwise.
func UserMessage(err error, fallback string) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return fallback
}
