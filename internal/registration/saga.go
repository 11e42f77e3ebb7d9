package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"instadoc/internal/audit"
	"instadoc/internal/identity"
	"instadoc/internal/profile"
	"instadoc/internal/registration/metrics"
	"instadoc/internal/upload"
	"instadoc/internal/verification"
	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/sentinel"
	"instadoc/pkg/requestcontext"
)

// Step labels used in metrics and trail entries.
const (
	stepValidation  = "validation"
	stepChallenge   = "challenge"
	stepIdentity    = "identity"
	stepPhoto       = "upload_photo"
	stepCertificate = "upload_certificate"
	stepProfile     = "profile"
)

// Outcome is the terminal result of a saga run. On Complete it carries the
// provisioned identity and written profile; on failure State records how far
// the run got.
type Outcome struct {
	State       State
	Identity    identity.Identity
	DisplayName string
	Profile     profile.Record
}

// Coordinator drives one registration attempt at a time through the saga.
// Steps are strictly sequenced except the two uploads, which run
// concurrently on independent blobs. Nothing past identity creation is
// compensated on a later failure: a failed upload or profile write leaves an
// orphaned identity behind, and that is accepted.
type Coordinator struct {
	gate       Gate
	challenges verification.ChallengeStore
	identities IdentityProvider
	uploader   Uploader
	profiles   ProfileWriter
	trail      Recorder
	config     FormConfig

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func WithTrail(trail Recorder) Option {
	return func(c *Coordinator) { c.trail = trail }
}

// WithClock overrides profile timestamps. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(
	gate Gate,
	challenges verification.ChallengeStore,
	identities IdentityProvider,
	uploader Uploader,
	profiles ProfileWriter,
	config FormConfig,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		gate:       gate,
		challenges: challenges,
		identities: identities,
		uploader:   uploader,
		profiles:   profiles,
		trail:      nopRecorder{},
		config:     config,
		logger:     slog.Default(),
		tracer:     otel.Tracer("instadoc/registration"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestCode validates the address, draws a fresh code, dispatches it and
// stores the challenge under the caller's registration session. A repeat call
// overwrites the outstanding challenge: the newest code wins.
func (c *Coordinator) RequestCode(ctx context.Context, addr string) error {
	ctx, span := c.tracer.Start(ctx, "registration.request_code")
	defer span.End()

	sessionID := requestcontext.SessionID(ctx)
	if sessionID == "" {
		return derrors.New(derrors.CodeBadRequest, "no registration session")
	}

	challenge, err := c.gate.RequestCode(ctx, addr)
	if err != nil {
		c.record(ctx, audit.Event{
			Action:  audit.ActionCodeRequested,
			Email:   addr,
			Outcome: audit.OutcomeError,
			Reason:  derrors.MessageOf(err),
		})
		return spanErr(span, err)
	}

	if err := c.challenges.Put(ctx, sessionID, challenge); err != nil {
		return spanErr(span, derrors.Wrap(err, derrors.CodeInternal, "could not store verification challenge"))
	}

	c.record(ctx, audit.Event{
		Action:  audit.ActionCodeRequested,
		Email:   addr,
		Outcome: audit.OutcomeOK,
	})
	c.logger.InfoContext(ctx, "verification code issued", "email", addr, "session_id", sessionID)
	return nil
}

// Register runs the saga for a submitted form. The form is validated locally
// before any backend call; the coordinator then verifies the code, creates
// the identity, uploads both assets and writes the profile, surfacing the
// first failure without retries or rollback.
func (c *Coordinator) Register(ctx context.Context, form Form, candidate string) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "registration.register",
		trace.WithAttributes(attribute.String("session_id", requestcontext.SessionID(ctx))))
	defer span.End()

	if c.metrics != nil {
		c.metrics.Attempts.Inc()
		start := time.Now()
		defer func() { c.metrics.Duration.Observe(time.Since(start).Seconds()) }()
	}

	form = c.config.Normalize(form)
	if err := c.config.Validate(form); err != nil {
		c.failStep(stepValidation)
		return Outcome{State: StateCollectingInput}, spanErr(span, err)
	}

	if err := c.consumeChallenge(ctx, candidate); err != nil {
		c.failStep(stepChallenge)
		return Outcome{State: StateAwaitingVerification}, spanErr(span, err)
	}

	id, err := c.createIdentity(ctx, form)
	if err != nil {
		c.failStep(stepIdentity)
		c.recordFailed(ctx, "", form.Email, err)
		return Outcome{State: StateFailed}, spanErr(span, err)
	}

	photoURL, certURL, failedStep, err := c.uploadAssets(ctx, id, form)
	if err != nil {
		c.failStep(failedStep)
		c.recordFailed(ctx, id.ID, form.Email, err)
		return Outcome{State: StateFailed, Identity: id}, spanErr(span, err)
	}

	record, err := c.writeProfile(ctx, id, form, photoURL, certURL)
	if err != nil {
		c.failStep(stepProfile)
		c.recordFailed(ctx, id.ID, form.Email, err)
		return Outcome{State: StateFailed, Identity: id}, spanErr(span, err)
	}

	if c.metrics != nil {
		c.metrics.Completed.Inc()
	}
	c.record(ctx, audit.Event{
		Action:     audit.ActionRegistrationCompleted,
		IdentityID: id.ID,
		Email:      form.Email,
		Outcome:    audit.OutcomeOK,
	})
	c.logger.InfoContext(ctx, "registration complete",
		"identity_id", id.ID, "email", form.Email)

	return Outcome{
		State:       StateComplete,
		Identity:    id,
		DisplayName: form.DisplayName(),
		Profile:     record,
	}, nil
}

// consumeChallenge checks the candidate against the session's outstanding
// challenge. A match consumes the challenge; a mismatch leaves it in place so
// the user can retry.
func (c *Coordinator) consumeChallenge(ctx context.Context, candidate string) error {
	ctx, span := c.tracer.Start(ctx, "registration.verify_code")
	defer span.End()

	sessionID := requestcontext.SessionID(ctx)

	challenge, err := c.challenges.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return spanErr(span, derrors.Wrap(err, derrors.CodeInternal, "could not load verification challenge"))
	}

	if err := c.gate.VerifyCode(challenge, candidate); err != nil {
		c.record(ctx, audit.Event{
			Action:  audit.ActionCodeMismatch,
			Email:   challenge.Email,
			Outcome: audit.OutcomeDenied,
			Reason:  derrors.MessageOf(err),
		})
		return spanErr(span, err)
	}

	if err := c.challenges.Delete(ctx, sessionID); err != nil {
		// The code was accepted; a leftover challenge only risks one
		// extra successful verify in this session.
		c.logger.WarnContext(ctx, "challenge delete failed", "session_id", sessionID, "error", err)
	}

	c.record(ctx, audit.Event{
		Action:  audit.ActionCodeVerified,
		Email:   challenge.Email,
		Outcome: audit.OutcomeOK,
	})
	return nil
}

func (c *Coordinator) createIdentity(ctx context.Context, form Form) (identity.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "registration.create_identity")
	defer span.End()

	id, err := c.identities.CreateIdentity(ctx, form.Email, form.Password)
	if err != nil {
		return identity.Identity{}, spanErr(span, err)
	}

	c.record(ctx, audit.Event{
		Action:     audit.ActionIdentityCreated,
		IdentityID: id.ID,
		Email:      id.Email,
		Outcome:    audit.OutcomeOK,
	})
	return id, nil
}

// uploadAssets transfers the photo and certificate concurrently. Both must
// succeed before the profile write; the first failure wins and the run is
// terminal, with the identity already provisioned.
func (c *Coordinator) uploadAssets(ctx context.Context, id identity.Identity, form Form) (photoURL, certURL, failedStep string, err error) {
	ctx, span := c.tracer.Start(ctx, "registration.upload_assets")
	defer span.End()

	var photoErr, certErr error
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		photoURL, photoErr = c.awaitUpload(gctx, id, form.Photo, "profiles/"+id.ID+"/"+form.Photo.Name)
		return photoErr
	})
	g.Go(func() error {
		certURL, certErr = c.awaitUpload(gctx, id, form.Certificate, "certificates/"+id.ID+"/"+form.Certificate.Name)
		return certErr
	})

	if err := g.Wait(); err != nil {
		// The losing sibling is cancelled when one upload fails; surface
		// the real failure, not the cancellation.
		step, failure := stepCertificate, err
		switch {
		case photoErr != nil && !errors.Is(photoErr, context.Canceled):
			step, failure = stepPhoto, photoErr
		case certErr != nil && !errors.Is(certErr, context.Canceled):
			step, failure = stepCertificate, certErr
		case photoErr != nil:
			step = stepPhoto
		}
		return "", "", step, spanErr(span, failure)
	}
	return photoURL, certURL, "", nil
}

// awaitUpload starts a transfer and blocks until its terminal event.
func (c *Coordinator) awaitUpload(ctx context.Context, id identity.Identity, blob upload.Blob, path string) (string, error) {
	task := c.uploader.Upload(ctx, blob, path)
	url, err := task.Wait(ctx)
	if err != nil {
		return "", err
	}
	c.record(ctx, audit.Event{
		Action:     audit.ActionUploadCompleted,
		IdentityID: id.ID,
		Outcome:    audit.OutcomeOK,
		Reason:     path,
	})
	return url, nil
}

func (c *Coordinator) writeProfile(ctx context.Context, id identity.Identity, form Form, photoURL, certURL string) (profile.Record, error) {
	ctx, span := c.tracer.Start(ctx, "registration.write_profile")
	defer span.End()

	record := profile.Record{
		ID:               id.ID,
		FirstName:        form.FirstName,
		LastName:         form.LastName,
		Email:            form.Email,
		Phone:            form.Phone,
		Gender:           form.Gender,
		Institution:      form.Institution,
		Graduation:       form.Graduation,
		Housemanship:     form.Housemanship,
		YearHousemanship: form.YearHousemanship,
		RegistrationDate: form.RegistrationDate,
		WorkAddress:      form.WorkAddress,
		HomeAddress:      form.HomeAddress,
		MaritalStatus:    form.MaritalStatus,
		StateOfOrigin:    form.StateOfOrigin,
		Specialization:   form.Specialization,
		Bio:              form.Bio,
		Experience:       form.Experience,
		Currency:         form.Currency,
		OtherLanguage:    form.OtherLanguage(),
		Role:             profile.RoleDoctor,
		AccountStatus:    profile.StatusPending,
		PhotoURL:         photoURL,
		CertificateURL:   certURL,
		IsAvailable:      false,
		WorkingHour:      []string{},
		CreatedAt:        c.now().UTC().Format(time.RFC3339),
	}

	if err := c.profiles.Write(ctx, record); err != nil {
		return profile.Record{}, spanErr(span, err)
	}

	c.record(ctx, audit.Event{
		Action:     audit.ActionProfileWritten,
		IdentityID: id.ID,
		Email:      form.Email,
		Outcome:    audit.OutcomeOK,
	})
	return record, nil
}

func (c *Coordinator) record(ctx context.Context, event audit.Event) {
	c.trail.Record(ctx, event)
}

func (c *Coordinator) recordFailed(ctx context.Context, identityID, email string, err error) {
	c.record(ctx, audit.Event{
		Action:     audit.ActionRegistrationFailed,
		IdentityID: identityID,
		Email:      email,
		Outcome:    audit.OutcomeError,
		Reason:     derrors.MessageOf(err),
	})
}

func (c *Coordinator) failStep(step string) {
	if c.metrics != nil {
		c.metrics.Failed.WithLabelValues(step).Inc()
	}
}

func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, derrors.MessageOf(err))
	}
	return err
}
