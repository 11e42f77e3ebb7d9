package verification

import "time"

// Challenge is the single outstanding one-time passcode for an email address.
// The gate issues it; the caller owns it and decides where it lives between
// request and verify. IssuedAt is recorded so an expiry policy can be layered
// on later without changing the shape.
type Challenge struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Zero reports whether the challenge carries no code, i.e. none outstanding.
func (c Challenge) Zero() bool {
	return c.Code == ""
}
