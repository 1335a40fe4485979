package evaluator

import (
	"errors"
	"fmt"
)

// TransportError indicates the service could not be reached or the
// exchange broke off mid-way.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError indicates the service answered with a non-success status.
// Detail holds the service-provided reason when one was sent.
type ServiceError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: service error (HTTP %d): %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: service error (HTTP %d)", e.Op, e.StatusCode)
}

// InvalidResponseError indicates a success response whose body does not
// have the expected shape.
type InvalidResponseError struct {
	Op   string
	Body []byte
	Err  error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// Reason returns the service-provided detail carried by err, or fallback
// when there is none.
func Reason(err error, fallback string) string {
	var svc *ServiceError
	if errors.As(err, &svc) && svc.Detail != "" {
		return svc.Detail
	}
	return fallback
}
