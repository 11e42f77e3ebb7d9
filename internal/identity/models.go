package identity

import "time"

// Identity is the durable result of identity creation: once provisioned it is
// never rolled back by this subsystem, even when a later registration step
// fails.
type Identity struct {
	ID    string
	Email string
}

// UserRecord is the stored credential record behind an identity. The raw
// password never persists; only its bcrypt hash does.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
