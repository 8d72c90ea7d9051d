// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrService is the base error for agent service failures.
	ErrService = errors.New("agent service error")

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrRun is the base error for run lifecycle failures.
	ErrRun = errors.New("run error")

	// ErrRunFailed indicates the service reported a failed run.
	ErrRunFailed = fmt.Errorf("%w: failed", ErrRun)

	// ErrRunExpired indicates the run expired before completing.
	ErrRunExpired = fmt.Errorf("%w: expired", ErrRun)

	// ErrRunCancelled indicates the run was cancelled server-side.
	ErrRunCancelled = fmt.Errorf("%w: cancelled", ErrRun)
)

// ServiceError provides rich context for agent service failures.
// Use errors.As to extract it from a wrapped error chain.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("agent service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("agent service error %d: %s", e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }
