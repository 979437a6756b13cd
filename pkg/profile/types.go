package profile

import (
	"github.com/pkg/errors"
)

// ErrUnknownField is returned when a field name is not one of the profile fields.
var ErrUnknownField = errors.New("unknown profile field")

// Profile represents the user-entered CV fields. Every field is free text.
type Profile struct {
	Name       string `json:"name" yaml:"name"`
	Title      string `json:"title" yaml:"title"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone" yaml:"phone"`
	Summary    string `json:"summary" yaml:"summary"`
	Skills     string `json:"skills" yaml:"skills"`
	Experience string `json:"experience" yaml:"experience"`
}

// Field names one of the profile fields.
type Field string

// Profile fields, in form order.
const (
	FieldName       Field = "name"
	FieldTitle      Field = "title"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldSummary    Field = "summary"
	FieldSkills     Field = "skills"
	FieldExperience Field = "experience"
)

// Fields returns every profile field in form order.
func Fields() (fields []Field) {
	fields = []Field{
		FieldName,
		FieldTitle,
		FieldEmail,
		FieldPhone,
		FieldSummary,
		FieldSkills,
		FieldExperience,
	}
	return fields
}

// ParseField maps a field name to a Field.
func ParseField(name string) (field Field, err error) {
	for _, f := range Fields() {
		if string(f) == name {
			field = f
			return field, err
		}
	}
	err = errors.Wrapf(ErrUnknownField, "%q", name)
	return field, err
}

// Get returns the value of field f.
func (p Profile) Get(f Field) (value string) {
	switch f {
	case FieldName:
		value = p.Name
	case FieldTitle:
		value = p.Title
	case FieldEmail:
		value = p.Email
	case FieldPhone:
		value = p.Phone
	case FieldSummary:
		value = p.Summary
	case FieldSkills:
		value = p.Skills
	case FieldExperience:
		value = p.Experience
	}
	return value
}

// With returns a copy of p with field f set to value.
func (p Profile) With(f Field, value string) (updated Profile, err error) {
	updated = p
	switch f {
	case FieldName:
		updated.Name = value
	case FieldTitle:
		updated.Title = value
	case FieldEmail:
		updated.Email = value
	case FieldPhone:
		updated.Phone = value
	case FieldSummary:
		updated.Summary = value
	case FieldSkills:
		updated.Skills = value
	case FieldExperience:
		updated.Experience = value
	default:
		err = errors.Wrapf(ErrUnknownField, "%q", string(f))
		updated = p
	}
	return updated, err
}

// State is a point-in-time copy of a session: the profile plus the active selections.
type State struct {
	Profile  Profile `json:"profile"`
	Language string  `json:"language"`
	Template string  `json:"template"`
	// Revision counts summary writes.
	Revision uint64 `json:"revision"`
}
