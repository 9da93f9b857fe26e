// Package audit provides audit logging for configuration runs.
package audit

import (
	"fmt"
	"os/user"
	"time"
)

// Event records one device's outcome in a plan or apply run.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Fabric    string    `json:"fabric"`
	Device    string    `json:"device"`
	Operation string    `json:"operation"`
	Changes   []string  `json:"changes,omitempty"` // semantic keys, action-tagged
	Applied   int       `json:"applied"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	DryRun    bool      `json:"dry_run"`
	Duration  string    `json:"duration,omitempty"`
}

// NewEvent creates an event stamped with the current time and user.
func NewEvent(fabricName, deviceName, operation string) *Event {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	now := time.Now()
	return &Event{
		ID:        fmt.Sprintf("%s-%s-%d", deviceName, operation, now.UnixNano()),
		Timestamp: now,
		User:      username,
		Fabric:    fabricName,
		Device:    deviceName,
		Operation: operation,
	}
}

// Filter defines criteria for querying audit events. Zero fields match
// everything.
type Filter struct {
	Device    string
	Operation string
	Since     time.Time
	Limit     int
}

// Matches reports whether an event passes the filter.
func (f Filter) Matches(e *Event) bool {
	if f.Device != "" && e.Device != f.Device {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
