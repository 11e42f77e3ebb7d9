package verification

import "context"

// ChallengeStore holds the single outstanding challenge per registration
// session. Put overwrites any prior challenge for the same session; Get
// returns sentinel.ErrNotFound (wrapped) when none is outstanding.
//
// Implementations live in the store subpackage (memory for tests and
// single-node dev, Redis for shared deployments).
type ChallengeStore interface {
	Put(ctx context.Context, sessionID string, ch Challenge) error
	Get(ctx context.Context, sessionID string) (Challenge, error)
	Delete(ctx context.Context, sessionID string) error
}
