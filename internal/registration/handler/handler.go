// Package handler wires the registration endpoints to the saga coordinator.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"instadoc/internal/registration"
	"instadoc/internal/upload"
	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/httputil"
	"instadoc/pkg/requestcontext"
)

// maxFormMemory bounds in-memory multipart parsing; larger parts spill to
// temp files.
const maxFormMemory = 32 << 20

// Coordinator is the saga surface the handler drives.
type Coordinator interface {
	RequestCode(ctx context.Context, addr string) error
	Register(ctx context.Context, form registration.Form, candidate string) (registration.Outcome, error)
}

// SessionIssuer mints the follow-on session a completed registration ends
// with.
type SessionIssuer interface {
	Issue(identityID, displayName string) (string, error)
	SetCookies(w http.ResponseWriter, token, identityID, displayName string)
}

// Handler wires registration endpoints to the coordinator.
type Handler struct {
	saga     Coordinator
	sessions SessionIssuer
	logger   *slog.Logger
}

// New constructs a registration handler with its dependencies.
func New(saga Coordinator, sessions SessionIssuer, logger *slog.Logger) *Handler {
	return &Handler{saga: saga, sessions: sessions, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register/code", h.HandleRequestCode)
	r.Post("/register", h.HandleRegister)
	r.Get("/catalog/specialties", h.HandleSpecialties)
	r.Get("/catalog/languages", h.HandleLanguages)
}

type codeRequest struct {
	Email string `json:"email"`
}

// HandleRequestCode handles POST /register/code.
func (h *Handler) HandleRequestCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[codeRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	if err := h.saga.RequestCode(ctx, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "code request failed",
			"request_id", requestcontext.RequestID(ctx),
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification code sent",
	})
}

// HandleRegister handles POST /register: the multipart form submission that
// runs the whole saga.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	form, candidate, err := parseForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.saga.Register(ctx, form, candidate)
	if err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"email", form.Email,
			"state", string(outcome.State),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.sessions.Issue(outcome.Identity.ID, outcome.DisplayName)
	if err != nil {
		h.logger.ErrorContext(ctx, "session issue failed",
			"request_id", requestID,
			"identity_id", outcome.Identity.ID,
			"error", err,
		)
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeInternal, "could not establish session"))
		return
	}
	h.sessions.SetCookies(w, token, outcome.Identity.ID, outcome.DisplayName)

	h.logger.InfoContext(ctx, "registration complete",
		"request_id", requestID,
		"identity_id", outcome.Identity.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, outcome.Profile)
}

// HandleSpecialties handles GET /catalog/specialties.
func (h *Handler) HandleSpecialties(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{
		"specialties": registration.MedicalSpecialties(),
	})
}

// HandleLanguages handles GET /catalog/languages.
func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{
		"languages": registration.Languages(),
	})
}

func parseForm(r *http.Request) (registration.Form, string, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return registration.Form{}, "", derrors.Wrap(err, derrors.CodeBadRequest, "invalid multipart form")
	}

	experience, _ := strconv.Atoi(r.FormValue("experience")) // blank or junk reads as 0

	form := registration.Form{
		FirstName:        r.FormValue("firstname"),
		LastName:         r.FormValue("lastname"),
		Email:            r.FormValue("email"),
		Password:         r.FormValue("password"),
		Phone:            r.FormValue("phoneNumber"),
		Gender:           r.FormValue("gender"),
		Institution:      r.FormValue("institution"),
		Graduation:       r.FormValue("graduation"),
		Housemanship:     r.FormValue("housemanship"),
		YearHousemanship: r.FormValue("yearHousemanship"),
		RegistrationDate: r.FormValue("registrationDate"),
		WorkAddress:      r.FormValue("workAddress"),
		HomeAddress:      r.FormValue("homeAddress"),
		MaritalStatus:    r.FormValue("maritalStatus"),
		StateOfOrigin:    r.FormValue("stateOfOrigin"),
		Specialization:   r.FormValue("specialization"),
		Bio:              r.FormValue("bio"),
		Experience:       experience,
		Currency:         r.FormValue("currency"),
		Languages:        splitLanguages(r.FormValue("otherLanguage")),
	}

	photo, err := readBlob(r, "photo")
	if err != nil {
		return registration.Form{}, "", err
	}
	form.Photo = photo

	certificate, err := readBlob(r, "certificate")
	if err != nil {
		return registration.Form{}, "", err
	}
	form.Certificate = certificate

	return form, r.FormValue("otp"), nil
}

func splitLanguages(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readBlob(r *http.Request, field string) (upload.Blob, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload.Blob{}, nil // validation reports the missing file
		}
		return upload.Blob{}, derrors.Wrap(err, derrors.CodeBadRequest, "invalid "+field+" upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return upload.Blob{}, derrors.Wrap(err, derrors.CodeBadRequest, "could not read "+field+" upload")
	}

	return upload.Blob{
		Name:        headerName(header, field),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func headerName(header *multipart.FileHeader, fallback string) string {
	if header.Filename != "" {
		return header.Filename
	}
	return fallback
}
