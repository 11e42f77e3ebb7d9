package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"instadoc/internal/identity"
	idstore "instadoc/internal/identity/store"
	"instadoc/internal/platform/middleware"
	"instadoc/internal/profile"
	pstore "instadoc/internal/profile/store"
	"instadoc/internal/registration"
	"instadoc/internal/registration/handler"
	"instadoc/internal/session"
	"instadoc/internal/upload"
	"instadoc/internal/verification"
	vstore "instadoc/internal/verification/store"
	"instadoc/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captureDispatcher struct {
	lastCode string
	fail     bool
}

func (d *captureDispatcher) Dispatch(_ context.Context, _, code string) error {
	if d.fail {
		return errors.New("smtp down")
	}
	d.lastCode = code
	return nil
}

type HandlerSuite struct {
	suite.Suite

	dispatcher *captureDispatcher
	users      *idstore.Memory
	docs       *pstore.Memory
	router     *chi.Mux

	rsid *http.Cookie
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.dispatcher = &captureDispatcher{}
	s.users = idstore.NewMemory()
	s.docs = pstore.NewMemory()
	s.rsid = nil

	coordinator := registration.NewCoordinator(
		verification.NewGate(s.dispatcher),
		vstore.NewMemory(),
		identity.NewLocalProvider(s.users),
		upload.NewClient(upload.NewMemoryStore()),
		profile.NewWriter(s.docs),
		registration.DefaultFormConfig(),
	)

	h := handler.New(coordinator, session.NewManager([]byte("test-key")), testLogger())

	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestID, middleware.RequestTime, middleware.ClientMetadata, middleware.Session)
	h.Register(s.router)
}

// do runs a request, carrying the registration session cookie across calls
// like a browser would.
func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	if s.rsid != nil {
		req.AddCookie(s.rsid)
	}
	rr := testutil.DoRequest(s.router, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			s.rsid = c
		}
	}
	return rr
}

func (s *HandlerSuite) requestCode() string {
	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/register/code",
		map[string]string{"email": "doc@example.com"}))
	testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	s.Require().NotEmpty(s.dispatcher.lastCode)
	return s.dispatcher.lastCode
}

type formOverrides map[string]string

func (s *HandlerSuite) multipartRequest(otp string, overrides formOverrides) *http.Request {
	fields := map[string]string{
		"firstname":      "Ada",
		"lastname":       "Obi",
		"email":          "doc@example.com",
		"password":       "secret1",
		"phoneNumber":    "+2348012345678",
		"gender":         "Female",
		"institution":    "University of Lagos",
		"graduation":     "2015",
		"specialization": "Cardiology",
		"experience":     "7",
		"currency":       "NGN",
		"otherLanguage":  "Yoruba,Igbo",
		"otp":            otp,
	}
	for k, v := range overrides {
		fields[k] = v
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}

	photo, err := mw.CreateFormFile("photo", "photo.jpg")
	s.Require().NoError(err)
	_, err = photo.Write(bytes.Repeat([]byte{0xAB}, 2048))
	s.Require().NoError(err)

	cert, err := mw.CreateFormFile("certificate", "cert.pdf")
	s.Require().NoError(err)
	_, err = cert.Write(bytes.Repeat([]byte{0xCD}, 1024))
	s.Require().NoError(err)

	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *HandlerSuite) TestRegisterHappyPath() {
	testutil.Given(s.T(), "a dispatched verification code")
	code := s.requestCode()

	testutil.When(s.T(), "the multipart form is submitted with the correct code")
	rr := s.do(s.multipartRequest(code, nil))

	testutil.Then(s.T(), "the profile is returned with the session cookies set")
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rec := testutil.UnmarshalResponse[profile.Record](s.T(), rr)
	s.Equal("Doctor", rec.Role)
	s.Equal("pending", rec.AccountStatus)
	s.Equal("doc@example.com", rec.Email)
	s.NotEmpty(rec.ID)
	s.NotEmpty(rec.PhotoURL)
	s.NotEmpty(rec.CertificateURL)

	cookies := map[string]string{}
	for _, c := range rr.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	s.Equal(rec.ID, cookies[session.UserIDCookie])
	s.Equal("Ada Obi", cookies[session.UserNameCookie])
	s.NotEmpty(cookies[session.TokenCookie])

	s.Equal(1, s.docs.Len())
}

func (s *HandlerSuite) TestRequestCodeInvalidEmail() {
	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/register/code",
		map[string]string{"email": "not-an-email"}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "validation_error")
}

func (s *HandlerSuite) TestRequestCodeDispatchFailure() {
	s.dispatcher.fail = true
	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/register/code",
		map[string]string{"email": "doc@example.com"}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadGateway)
	testutil.AssertErrorCode(s.T(), rr, "upstream_unavailable")
}

func (s *HandlerSuite) TestRegisterWrongCode() {
	s.requestCode()

	rr := s.do(s.multipartRequest("00000", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(s.T(), rr, "unauthorized")
	s.Equal(0, s.users.Len())
}

func (s *HandlerSuite) TestRegisterValidationFailure() {
	code := s.requestCode()

	rr := s.do(s.multipartRequest(code, formOverrides{"password": "short"}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "validation_error")
	s.Equal(0, s.users.Len())
}

func (s *HandlerSuite) TestRegisterEmailInUse() {
	code := s.requestCode()
	rr := s.do(s.multipartRequest(code, nil))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	code = s.requestCode()
	rr = s.do(s.multipartRequest(code, nil))
	testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	testutil.AssertErrorCode(s.T(), rr, "conflict")
}

func (s *HandlerSuite) TestRegisterMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=nope")

	rr := s.do(req)
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "bad_request")
}

func (s *HandlerSuite) TestCatalogEndpoints() {
	rr := s.do(httptest.NewRequest(http.MethodGet, "/catalog/specialties", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	specialties := testutil.UnmarshalResponse[map[string][]string](s.T(), rr)
	s.Contains((*specialties)["specialties"], "Cardiology")

	rr = s.do(httptest.NewRequest(http.MethodGet, "/catalog/languages", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	langs := testutil.UnmarshalResponse[map[string][]string](s.T(), rr)
	s.Contains((*langs)["languages"], "Yoruba")
}
