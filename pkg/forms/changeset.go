// Package forms validates submitted form values.
package forms

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Changeset holds submitted values and the errors found while validating
// them.
type Changeset struct {
	// Changes are the submitted values, keyed by field name.
	Changes map[string]any

	// Errors contains validation errors keyed by field name.
	Errors map[string][]string

	// Valid is false once any validation adds an error.
	Valid bool
}

// NewChangeset creates an empty, valid changeset.
func NewChangeset() *Changeset {
	return &Changeset{
		Changes: make(map[string]any),
		Errors:  make(map[string][]string),
		Valid:   true,
	}
}

// Cast builds a changeset from params, keeping only the allowed fields.
func Cast(params map[string]any, allowed []string) *Changeset {
	cs := NewChangeset()
	for _, field := range allowed {
		if v, ok := params[field]; ok {
			cs.Changes[field] = v
		}
	}
	return cs
}

// Change sets a value.
func (cs *Changeset) Change(key string, value any) *Changeset {
	cs.Changes[key] = value
	return cs
}

// GetField returns a value, or nil.
func (cs *Changeset) GetField(key string) any {
	return cs.Changes[key]
}

// GetString returns a string value, or "".
func (cs *Changeset) GetString(key string) string {
	s, _ := cs.GetField(key).(string)
	return s
}

// ValidateRequired adds "is required" to every blank field.
func (cs *Changeset) ValidateRequired(fields ...string) *Changeset {
	for _, field := range fields {
		if isEmpty(cs.GetField(field)) {
			cs.AddError(field, "is required")
		}
	}
	return cs
}

// ValidateFormat checks a field against a regex. Empty values and fields
// that already have an error are skipped.
func (cs *Changeset) ValidateFormat(field string, pattern *regexp.Regexp, opts ...FormatOption) *Changeset {
	value := strings.TrimSpace(cs.GetString(field))
	if value == "" || cs.HasError(field) {
		return cs
	}

	if !pattern.MatchString(value) {
		msg := "has invalid format"
		for _, opt := range opts {
			if opt.message != "" {
				msg = opt.message
			}
		}
		cs.AddError(field, msg)
	}
	return cs
}

// ValidateEmail checks that a field holds a bare email address.
func (cs *Changeset) ValidateEmail(field string) *Changeset {
	return cs.ValidateFormat(field, emailRegex, WithMessage("is not a valid email address"))
}

// FormatOption configures format validation.
type FormatOption struct {
	message string
}

// WithMessage sets the error message.
func WithMessage(msg string) FormatOption {
	return FormatOption{message: msg}
}

// AddError adds an error to a field.
func (cs *Changeset) AddError(field, message string) *Changeset {
	cs.Errors[field] = append(cs.Errors[field], message)
	cs.Valid = false
	return cs
}

// HasError returns true if a field has errors.
func (cs *Changeset) HasError(field string) bool {
	return len(cs.Errors[field]) > 0
}

// FirstError returns the first error for a field.
func (cs *Changeset) FirstError(field string) string {
	if errs := cs.Errors[field]; len(errs) > 0 {
		return errs[0]
	}
	return ""
}

// FirstErrors returns the first error of every invalid field.
func (cs *Changeset) FirstErrors() map[string]string {
	out := make(map[string]string, len(cs.Errors))
	for field := range cs.Errors {
		out[field] = cs.FirstError(field)
	}
	return out
}

// ErrorMessages returns all errors as one string, ordered by field.
func (cs *Changeset) ErrorMessages() string {
	fields := make([]string, 0, len(cs.Errors))
	for field := range cs.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		for _, err := range cs.Errors[field] {
			msgs = append(msgs, fmt.Sprintf("%s %s", field, err))
		}
	}
	return strings.Join(msgs, ", ")
}
