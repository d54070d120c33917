// Package models defines the core data types shared across services and UI.
package models

import (
	"fmt"
	"time"
)

// Snapshot is one fetch's parsed rate-limit result, treated as an atomic
// immutable unit. Utilization values are fractions of the window budget
// already consumed (0–1).
type Snapshot struct {
	SessionUtilization float64
	WeeklyUtilization  float64
	SessionReset       *time.Time
	WeeklyReset        *time.Time
	Status             string
	FetchedAt          time.Time
}

// SessionPercent returns the session utilization as a floored percentage.
func (s Snapshot) SessionPercent() int {
	return percentOf(s.SessionUtilization)
}

// WeeklyPercent returns the weekly utilization as a floored percentage.
func (s Snapshot) WeeklyPercent() int {
	return percentOf(s.WeeklyUtilization)
}

func percentOf(ratio float64) int {
	p := int(ratio * 100)
	if p < 0 {
		return 0
	}
	return p
}

// FailureKind classifies why a usage fetch failed.
type FailureKind int

const (
	// FailureUnauthorized means the API rejected the token (HTTP 401).
	FailureUnauthorized FailureKind = iota
	// FailureHTTP covers any other non-2xx response.
	FailureHTTP
	// FailureNetwork covers transport-level errors (DNS, timeout, refused).
	FailureNetwork
	// FailureUnknown covers unexpected parse or runtime errors.
	FailureUnknown
)

// String returns the string representation of a FailureKind.
func (k FailureKind) String() string {
	switch k {
	case FailureUnauthorized:
		return "unauthorized"
	case FailureHTTP:
		return "http"
	case FailureNetwork:
		return "network"
	case FailureUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// FetchFailure is the value a failed fetch is converted to at the client
// boundary. It is a value, not a panic: callers route it to the reducer.
type FetchFailure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (f *FetchFailure) Error() string {
	if f == nil {
		return "<nil>"
	}
	switch f.Kind {
	case FailureUnauthorized:
		return "unauthorized: token invalid or expired"
	case FailureHTTP:
		return fmt.Sprintf("http status %d", f.StatusCode)
	default:
		return f.Message
	}
}

// FetchResult pairs the two possible outcomes of a fetch. Exactly one of
// Snapshot and Failure is non-nil.
type FetchResult struct {
	Snapshot *Snapshot
	Failure  *FetchFailure
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool {
	return r.Snapshot != nil && r.Failure == nil
}
