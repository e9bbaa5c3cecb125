// Package contact validates, stores and forwards messages sent through the
// site's contact form.
package contact

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/portfolio/internal/errors"
)

// Message statuses.
const (
	StatusNew  = "new"
	StatusRead = "read"
)

// DefaultSubject is stored when the sender leaves the subject empty.
const DefaultSubject = "No subject"

// Error messages returned to the submitter.
const (
	MsgMissingFields = "Missing required fields: name, email, message"
	MsgInvalidEmail  = "Invalid email format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is the payload of the contact form.
type Submission struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message" validate:"required"`
}

// Message is a stored submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Status    string    `json:"status"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate checks required fields and the email shape. It expects a
// trimmed submission.
func (s Submission) Validate(v *validator.Validate) error {
	if err := v.Struct(s); err != nil {
		return errors.NewInvalidRequest(MsgMissingFields)
	}
	if !emailPattern.MatchString(s.Email) {
		return errors.NewInvalidRequest(MsgInvalidEmail)
	}
	return nil
}
