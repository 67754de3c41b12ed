package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Code identifies a field-level validation failure. Codes double as i18n keys.
type Code string

const (
	CodeNameRequired  Code = "name_required"
	CodePhoneRequired Code = "phone_required"
	CodePhoneInvalid  Code = "phone_invalid"

	CodeDateInvalid     Code = "date_invalid"
	CodeDatePast        Code = "date_past"
	CodeTimeUnavailable Code = "time_unavailable"
)

// FieldError is a validation failure on a single input field.
type FieldError struct {
	Field string
	Code  Code
}

func (e *FieldError) Error() string {
	return e.Field + ": " + string(e.Code)
}

// Contact is the client information collected by the booking wizard.
type Contact struct {
	Name  string `validate:"trimmed_required"`
	Phone string `validate:"trimmed_required,intl_phone"`
}

// ContactErrors holds the per-field failures of a Contact. Empty codes mean valid.
type ContactErrors struct {
	Name  Code
	Phone Code
}

func (e ContactErrors) Valid() bool {
	return e.Name == "" && e.Phone == ""
}

var (
	validate       *validator.Validate
	phoneSeparator = regexp.MustCompile(`[\s\-.()]`)
	phonePattern   = regexp.MustCompile(`^\+?\d{7,15}$`)
)

var customTags = map[string]validator.Func{
	"trimmed_required": validateTrimmedRequired,
	"intl_phone":       validateIntlPhone,
}

func init() {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	validate = v
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return v, nil
}

func validateTrimmedRequired(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateIntlPhone(fl validator.FieldLevel) bool {
	return IsInternationalPhone(fl.Field().String())
}

// StripPhone removes the separators allowed inside a phone number.
func StripPhone(phone string) string {
	return phoneSeparator.ReplaceAllString(strings.TrimSpace(phone), "")
}

// IsInternationalPhone accepts an optional leading + followed by 7 to 15 digits once
// spaces, dashes, dots and parentheses are removed.
func IsInternationalPhone(phone string) bool {
	return phonePattern.MatchString(StripPhone(phone))
}

// ValidateContact checks both fields independently.
func ValidateContact(c Contact) ContactErrors {
	result := ContactErrors{}

	err := validate.Struct(c)
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable on a programming error, treat both fields as invalid.
		return ContactErrors{Name: CodeNameRequired, Phone: CodePhoneInvalid}
	}

	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Name":
			result.Name = CodeNameRequired
		case "Phone":
			if fe.Tag() == "trimmed_required" {
				result.Phone = CodePhoneRequired
			} else {
				result.Phone = CodePhoneInvalid
			}
		}
	}
	return result
}

// ValidateName validates a single name input.
func ValidateName(name string) error {
	if code := ValidateContact(Contact{Name: name, Phone: "+10000000"}).Name; code != "" {
		return &FieldError{Field: "name", Code: code}
	}
	return nil
}

// ValidatePhone validates a single phone input.
func ValidatePhone(phone string) error {
	if code := ValidateContact(Contact{Name: "x", Phone: phone}).Phone; code != "" {
		return &FieldError{Field: "phone", Code: code}
	}
	return nil
}
