package registration

import (
	"context"

	"instadoc/internal/audit"
	"instadoc/internal/identity"
	"instadoc/internal/profile"
	"instadoc/internal/upload"
	"instadoc/internal/verification"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// Gate issues and checks one-time verification codes.
type Gate interface {
	RequestCode(ctx context.Context, email string) (verification.Challenge, error)
	VerifyCode(challenge verification.Challenge, candidate string) error
}

// IdentityProvider creates authentication identities. A created identity is
// durable: this coordinator never deletes one, even when a later step fails.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string) (identity.Identity, error)
}

// Uploader transfers blobs to object storage. The returned task yields
// progress events and exactly one terminal result.
type Uploader interface {
	Upload(ctx context.Context, blob upload.Blob, destinationPath string) *upload.Task
}

// ProfileWriter persists the completed profile document.
type ProfileWriter interface {
	Write(ctx context.Context, rec profile.Record) error
}

// Recorder captures trail events. Implementations must not block.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// nopRecorder is the default when no trail is wired.
type nopRecorder struct{}

func (nopRecorder) Record(context.Context, audit.Event) {}
