package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// CriticalReason classifies why a resolution failed unrecoverably.
type CriticalReason string

const (
	// ReasonStale means the event exceeded the maximum actionable age.
	ReasonStale CriticalReason = "stale"
	// ReasonUpstreamUnhealthy means the health gate reported the order API down.
	ReasonUpstreamUnhealthy CriticalReason = "upstream_unhealthy"
	// ReasonOrderNotFound means the order API returned 404 for the order.
	ReasonOrderNotFound CriticalReason = "order_not_found"
	// ReasonClientError means the order API returned a non-404 4xx response.
	ReasonClientError CriticalReason = "client_error"
	// ReasonRetriesExhausted means all quick retry attempts failed transiently.
	ReasonRetriesExhausted CriticalReason = "retries_exhausted"
)

// CriticalError is a distinguished resolution failure that must suppress
// acknowledgement so the message can be retried later through the log's own
// redelivery mechanism. AttemptsMade counts the HTTP attempts actually made
// before escalation (zero for stale or unhealthy short-circuits).
type CriticalError struct {
	Reason       CriticalReason
	AttemptsMade int
	Err          error
}

// NewCriticalError creates a CriticalError with the given classification,
// attempt count and underlying cause (which may be nil).
func NewCriticalError(reason CriticalReason, attemptsMade int, err error) *CriticalError {
	return &CriticalError{
		Reason:       reason,
		AttemptsMade: attemptsMade,
		Err:          err,
	}
}

// Error implements the error interface.
func (e *CriticalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("critical resolution failure (%s, %d attempts): %v", e.Reason, e.AttemptsMade, e.Err)
	}
	return fmt.Sprintf("critical resolution failure (%s, %d attempts)", e.Reason, e.AttemptsMade)
}

// Unwrap returns the underlying cause.
func (e *CriticalError) Unwrap() error {
	return e.Err
}

// AsCritical extracts a CriticalError from an error tree.
func AsCritical(err error) (*CriticalError, bool) {
	var ce *CriticalError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCritical reports whether the error tree contains a CriticalError.
func IsCritical(err error) bool {
	_, ok := AsCritical(err)
	return ok
}

// OrderAPIError represents a non-2xx response from the order API.
type OrderAPIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *OrderAPIError) Error() string {
	return fmt.Sprintf("order api returned status %d", e.StatusCode)
}

// Definitive reports whether the failure is a client error that will not
// resolve on retry (the order will not appear later).
func (e *OrderAPIError) Definitive() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// NotFound reports whether the order does not exist upstream.
func (e *OrderAPIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
