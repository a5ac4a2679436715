package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Checker manages health checks for the viewer
type Checker struct {
	checks map[string]CheckFunc
	mu     sync.RWMutex
	start  time.Time
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}

// NewChecker creates a new health checker
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		start:  time.Now(),
	}
}

// Register registers a health check under a component name
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check performs all registered checks. The worst component status wins.
func (c *Checker) Check() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(c.checks)),
		Uptime:    time.Since(c.start),
	}

	for name, checkFunc := range c.checks {
		start := time.Now()
		check := checkFunc()
		check.Duration = time.Since(start)
		check.LastChecked = start

		response.Checks[name] = check

		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}

// Healthy builds a passing check result
func Healthy(name, message string) Check {
	return Check{Name: name, Status: StatusHealthy, Message: message}
}

// Degraded builds a degraded check result
func Degraded(name, message string) Check {
	return Check{Name: name, Status: StatusDegraded, Message: message}
}

// Unhealthy builds a failing check result
func Unhealthy(name, message string) Check {
	return Check{Name: name, Status: StatusUnhealthy, Message: message}
}
