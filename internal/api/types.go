// Package api defines the JSON payload types of the pass-image-api
// HTTP surface.
package api

import "time"

// HealthStatus enumerates the health states reported by the service.
type HealthStatus string

// Healthy is the only state the service reports while it is up.
const Healthy HealthStatus = "healthy"

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    int          `json:"uptime_seconds"`
	Version   string       `json:"version"`
}

// ErrorResponse is the standard error envelope. URL is set when the
// failure originates at an upstream tile source.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
