// Package audit records the trail of registration activity. Events are
// emitted from domain logic, enriched with request metadata, and persisted by
// a background worker so emitting never blocks a registration step.
package audit

import "time"

// Registration actions captured in the trail.
const (
	ActionCodeRequested         = "registration.code_requested"
	ActionCodeVerified          = "registration.code_verified"
	ActionCodeMismatch          = "registration.code_mismatch"
	ActionIdentityCreated       = "registration.identity_created"
	ActionUploadCompleted       = "registration.upload_completed"
	ActionProfileWritten        = "registration.profile_written"
	ActionRegistrationCompleted = "registration.completed"
	ActionRegistrationFailed    = "registration.failed"
)

// Outcomes attached to events that can succeed or fail.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

// Event is a single trail entry. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	ID         string
	Timestamp  time.Time
	SessionID  string
	IdentityID string
	Email      string
	Action     string
	Outcome    string
	Reason     string
	IP         string
	Device     string
	RequestID  string
}
