package domain

import "time"

// Metrics receives observations from the gateway and the upstream client.
type Metrics interface {
	ObserveToolCall(tool string, duration time.Duration, err error)
	ObserveUpstreamRequest(endpoint string, duration time.Duration, err error)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveToolCall(string, time.Duration, error)        {}
func (NopMetrics) ObserveUpstreamRequest(string, time.Duration, error) {}
