// Package profile persists the doctor profile document that a completed
// registration produces. The document shape is the public account record the
// rest of the product reads; field names are part of that contract and must
// not drift.
package profile

// Document constants. Every registration writes a pending Doctor profile;
// activation is a separate review flow.
const (
	Collection    = "Users"
	RoleDoctor    = "Doctor"
	StatusPending = "pending"
)

// Record is the stored profile document. It carries the submitted form fields
// minus credentials and binaries, plus server-assigned identity and status
// fields and the URLs of the uploaded artifacts.
type Record struct {
	ID        string `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phoneNumber"`
	Gender    string `json:"gender"`

	Institution      string `json:"institution"`
	Graduation       string `json:"graduation"`
	Housemanship     string `json:"housemanship"`
	YearHousemanship string `json:"yearHousemanship"`
	RegistrationDate string `json:"registrationDate"`

	WorkAddress   string `json:"workAddress"`
	HomeAddress   string `json:"homeAddress"`
	MaritalStatus string `json:"maritalStatus"`
	StateOfOrigin string `json:"stateOfOrigin"`

	Specialization string `json:"specialization"`
	Bio            string `json:"bio"`
	Experience     int    `json:"experience"`
	Currency       string `json:"currency"`
	OtherLanguage  string `json:"otherLanguage"`

	Role          string `json:"role"`
	AccountStatus string `json:"accountStatus"`

	PhotoURL       string `json:"photoUrl"`
	CertificateURL string `json:"certificate"`

	IsAvailable bool     `json:"isAvailable"`
	WorkingHour []string `json:"workingHour"`
	CreatedAt   string   `json:"createdAt"` // RFC 3339
}
