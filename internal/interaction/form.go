package interaction

import (
	"errors"
	"sort"
	"strings"

	"github.com/pranayvarade/livefolio/pkg/forms"
)

// Contact form field names, as sent by the client.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldCompany = "company"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ErrInvalidForm is wrapped by every validation failure.
var ErrInvalidForm = errors.New("contact form is invalid")

// ContactForm is the user's message. Company is optional.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Set updates a field by name and reports whether the name was known.
func (f *ContactForm) Set(field, value string) bool {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldCompany:
		f.Company = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	default:
		return false
	}
	return true
}

// Get returns a field by name.
func (f ContactForm) Get(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldCompany:
		return f.Company
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	}
	return ""
}

// IsEmpty reports whether every field is blank.
func (f ContactForm) IsEmpty() bool {
	return f == ContactForm{}
}

// Validate checks the required fields and the email syntax. The returned
// error is a FieldErrors wrapping ErrInvalidForm.
func (f ContactForm) Validate() error {
	cs := forms.NewChangeset().
		Change(FieldName, f.Name).
		Change(FieldEmail, f.Email).
		Change(FieldCompany, f.Company).
		Change(FieldSubject, f.Subject).
		Change(FieldMessage, f.Message).
		ValidateRequired(FieldName, FieldEmail, FieldSubject, FieldMessage).
		ValidateEmail(FieldEmail)
	if cs.Valid {
		return nil
	}
	return FieldErrors(cs.FirstErrors())
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for name := range fe {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, name+" "+fe[name])
	}
	return ErrInvalidForm.Error() + ": " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrInvalidForm
}
