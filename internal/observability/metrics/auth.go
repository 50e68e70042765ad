package metrics

import (
	"time"

	obserrors "github.com/vanvan/vanvan-auth/internal/observability/errors"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Operation constants for metric tagging.
const (
	OperationRegister     = "register"
	OperationLogin        = "login"
	OperationAuthenticate = "authenticate"
)

// Metric names understood by sinks.
const (
	NameAuthOutcome  = "auth.outcome"
	NameAuthDuration = "auth.duration"
)

// Sink describes the minimal interface required to emit auth metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// AuthMetric captures the outcome of one identity operation.
type AuthMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitAuthOutcome emits standardised auth outcome metrics.
func EmitAuthOutcome(sink Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(NameAuthOutcome, 1, tags)

	if in.Duration > 0 {
		sink.Timing(NameAuthDuration, in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
