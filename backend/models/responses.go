package models

import (
	"time"
)

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries a stable machine code. Details holds per-field validation
// messages or, for a failed purchase, the balance and price involved.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data any, message string) *APIResponse {
	return &APIResponse{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Message:   message,
		Error:     &APIError{Code: code, Message: message, Details: details},
		Timestamp: time.Now().UTC(),
	}
}

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is the /health payload.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Commit     string                     `json:"commit"`
	Components map[string]ComponentHealth `json:"components"`
}

type ComponentHealth struct {
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func NewHealthCheck(version, commit string) *HealthCheck {
	return &HealthCheck{
		Status:     StatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    version,
		Commit:     commit,
		Components: make(map[string]ComponentHealth),
	}
}

// AddComponent records one dependency. A degraded component still serves
// traffic, so only an unhealthy one flips the overall status.
func (h *HealthCheck) AddComponent(name string, status HealthStatus, message string, details map[string]any) {
	h.Components[name] = ComponentHealth{Status: status, Message: message, Details: details}
	if status == StatusUnhealthy {
		h.Status = StatusUnhealthy
	}
}

func (h *HealthCheck) Healthy() bool {
	return h.Status != StatusUnhealthy
}
