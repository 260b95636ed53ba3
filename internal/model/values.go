package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MinCorrelationIDLength is the shortest accepted correlation id.
const MinCorrelationIDLength = 8

// CorrelationID ties the log lines and errors of one extraction attempt
// together.
type CorrelationID string

// NewCorrelationID returns a fresh 8-character correlation id.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString()[:MinCorrelationIDLength])
}

// ParseCorrelationID validates s as a correlation id.
func ParseCorrelationID(s string) (CorrelationID, error) {
	if len(s) < MinCorrelationIDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidCorrelationID, s)
	}
	return CorrelationID(s), nil
}

// String returns the id.
func (c CorrelationID) String() string {
	return string(c)
}

// Performance categories returned by ProcessingTime.PerformanceCategory.
const (
	PerformanceFast     = "fast"
	PerformanceNormal   = "normal"
	PerformanceSlow     = "slow"
	PerformanceCritical = "critical"
)

// MinProcessingTime is the floor applied to measured durations so that a
// very fast run on a coarse clock still yields a positive processing time.
const MinProcessingTime = time.Microsecond

// slowThreshold marks a processing time as slow.
const slowThreshold = 5 * time.Second

// ProcessingTime is a strictly positive duration.
// It is serialized as fractional seconds.
type ProcessingTime struct {
	d time.Duration
}

// NewProcessingTime rejects zero and negative durations.
func NewProcessingTime(d time.Duration) (ProcessingTime, error) {
	if d <= 0 {
		return ProcessingTime{}, fmt.Errorf("%w: %s", ErrInvalidProcessingTime, d)
	}
	return ProcessingTime{d: d}, nil
}

// MeasuredProcessingTime converts an elapsed duration into a ProcessingTime,
// flooring it at MinProcessingTime.
func MeasuredProcessingTime(elapsed time.Duration) ProcessingTime {
	return ProcessingTime{d: max(elapsed, MinProcessingTime)}
}

// Duration returns the underlying duration.
func (p ProcessingTime) Duration() time.Duration {
	return p.d
}

// Seconds returns the duration in seconds.
func (p ProcessingTime) Seconds() float64 {
	return p.d.Seconds()
}

// Milliseconds returns the duration in whole milliseconds.
func (p ProcessingTime) Milliseconds() int64 {
	return p.d.Milliseconds()
}

// IsSlow reports whether processing took longer than five seconds.
func (p ProcessingTime) IsSlow() bool {
	return p.d > slowThreshold
}

// PerformanceCategory buckets the duration for monitoring.
func (p ProcessingTime) PerformanceCategory() string {
	switch {
	case p.d < time.Second:
		return PerformanceFast
	case p.d < 3*time.Second:
		return PerformanceNormal
	case p.d < 10*time.Second:
		return PerformanceSlow
	default:
		return PerformanceCritical
	}
}

// Add returns the sum of two processing times.
func (p ProcessingTime) Add(o ProcessingTime) ProcessingTime {
	return ProcessingTime{d: p.d + o.d}
}

// MarshalJSON encodes the duration as seconds.
func (p ProcessingTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(math.Round(p.d.Seconds()*1e6) / 1e6)
}

// UnmarshalJSON decodes seconds and enforces positivity.
func (p *ProcessingTime) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}
	pt, err := NewProcessingTime(time.Duration(seconds * float64(time.Second)))
	if err != nil {
		return err
	}
	*p = pt
	return nil
}
