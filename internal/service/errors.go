package service

import (
	"errors"

	"estimator/internal/domain"
)

// Error tags returned to callers.
const (
	TagInvalidInput    = "InvalidInput"
	TagNotFound        = "NotFound"
	TagInvalidRateData = "InvalidRateData"
	TagInternal        = "InternalError"
)

// ErrorResponse is the error shape of every boundary operation. It
// serializes as {"error": tag, "details": message}.
type ErrorResponse struct {
	Kind    string `json:"error"`
	Details string `json:"details"`
	// RequestID correlates an internal error with the logs.
	RequestID string `json:"request_id,omitempty"`

	cause error
}

func (e *ErrorResponse) Error() string { return e.Kind + ": " + e.Details }

func (e *ErrorResponse) Unwrap() error { return e.cause }

// toErrorResponse maps an error onto the boundary taxonomy. Index drift
// and unclassified failures are internal: their details stay in the logs.
func toErrorResponse(err error, requestID string) *ErrorResponse {
	var er *ErrorResponse
	if errors.As(err, &er) {
		return er
	}
	resp := &ErrorResponse{Details: err.Error(), cause: err}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		resp.Kind = TagInvalidInput
	case domain.KindNotFound:
		resp.Kind = TagNotFound
	case domain.KindInvalidRateData:
		resp.Kind = TagInvalidRateData
	default:
		resp.Kind = TagInternal
		resp.Details = "internal error, see logs for request " + requestID
		resp.RequestID = requestID
	}
	return resp
}
