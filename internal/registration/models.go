// Package registration coordinates the doctor sign-up saga: code challenge,
// identity creation, asset uploads and the final profile write. Later steps
// can fail after earlier steps have durably succeeded; the coordinator
// surfaces those partial states instead of rolling them back.
package registration

import (
	"strconv"
	"strings"

	"instadoc/internal/upload"
	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/email"
)

// State names the coordinator's position in the saga. Transitions are strictly
// forward; Failed absorbs everything from CreatingIdentity onward.
type State string

const (
	StateCollectingInput      State = "collecting_input"
	StateAwaitingCode         State = "awaiting_code"
	StateAwaitingVerification State = "awaiting_verification"
	StateCreatingIdentity     State = "creating_identity"
	StateUploadingPhoto       State = "uploading_photo"
	StateUploadingCertificate State = "uploading_certificate"
	StateWritingProfile       State = "writing_profile"
	StateComplete             State = "complete"
	StateFailed               State = "failed"
)

// Form is the submitted registration input. It is frozen once the saga
// starts; the coordinator never mutates it.
type Form struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	Phone            string
	Gender           string
	Institution      string
	Graduation       string
	Housemanship     string
	YearHousemanship string
	RegistrationDate string
	WorkAddress      string
	HomeAddress      string
	MaritalStatus    string
	StateOfOrigin    string
	Specialization   string
	Bio              string
	Experience       int
	Currency         string
	Languages        []string

	Photo       upload.Blob
	Certificate upload.Blob
}

// DisplayName is the name the follow-on session greets the user with. Falls
// back to a name derived from the email address when the name fields are
// blank.
func (f Form) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
	if name != "" {
		return name
	}
	first, last := email.DeriveNameFromEmail(f.Email)
	return first + " " + last
}

// OtherLanguage renders the selected languages the way the profile document
// stores them.
func (f Form) OtherLanguage() string {
	return strings.Join(f.Languages, ",")
}

// FormConfig captures the differences between the registration form variants:
// the order required fields are validated and reported in, and the defaults
// applied to optional fields before the saga starts. One coordinator serves
// every variant.
type FormConfig struct {
	// RequiredFields are checked in order; the first blank one fails
	// validation.
	RequiredFields []string
	// DefaultCurrency fills Currency when the form leaves it blank.
	DefaultCurrency string
}

// DefaultFormConfig is the standard doctor sign-up variant.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		RequiredFields: []string{
			"firstname", "lastname", "email", "password",
			"phoneNumber", "gender", "specialization",
		},
		DefaultCurrency: "NGN",
	}
}

// Normalize applies the config's defaults to a submitted form.
func (c FormConfig) Normalize(f Form) Form {
	f.Email = strings.TrimSpace(f.Email)
	if strings.TrimSpace(f.Currency) == "" {
		f.Currency = c.DefaultCurrency
	}
	return f
}

// Validate checks the form locally, in the config's field order. It makes no
// backend calls; a violation keeps the saga in CollectingInput.
func (c FormConfig) Validate(f Form) error {
	for _, field := range c.RequiredFields {
		if strings.TrimSpace(fieldValue(f, field)) == "" {
			return derrors.New(derrors.CodeValidation, field+" is required")
		}
	}
	if !email.ValidAddress(f.Email) {
		return derrors.New(derrors.CodeValidation, "invalid email address")
	}
	if len(f.Password) < minPasswordLength {
		return derrors.New(derrors.CodeValidation,
			"password must be at least "+strconv.Itoa(minPasswordLength)+" characters")
	}
	if f.Photo.Size() == 0 {
		return derrors.New(derrors.CodeValidation, "profile photo is required")
	}
	if f.Certificate.Size() == 0 {
		return derrors.New(derrors.CodeValidation, "certificate is required")
	}
	if f.Photo.Size() > upload.MaxBlobSize {
		return derrors.New(derrors.CodeTooLarge, "profile photo exceeds the 5 MB limit")
	}
	if f.Certificate.Size() > upload.MaxBlobSize {
		return derrors.New(derrors.CodeTooLarge, "certificate exceeds the 5 MB limit")
	}
	return nil
}

const minPasswordLength = 6

func fieldValue(f Form, field string) string {
	switch field {
	case "firstname":
		return f.FirstName
	case "lastname":
		return f.LastName
	case "email":
		return f.Email
	case "password":
		return f.Password
	case "phoneNumber":
		return f.Phone
	case "gender":
		return f.Gender
	case "institution":
		return f.Institution
	case "graduation":
		return f.Graduation
	case "housemanship":
		return f.Housemanship
	case "yearHousemanship":
		return f.YearHousemanship
	case "registrationDate":
		return f.RegistrationDate
	case "workAddress":
		return f.WorkAddress
	case "homeAddress":
		return f.HomeAddress
	case "maritalStatus":
		return f.MaritalStatus
	case "stateOfOrigin":
		return f.StateOfOrigin
	case "specialization":
		return f.Specialization
	case "bio":
		return f.Bio
	case "currency":
		return f.Currency
	default:
		return "present" // unknown fields never fail validation
	}
}
