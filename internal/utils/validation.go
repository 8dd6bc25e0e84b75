package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"storvbox-be/internal/apperr"
)

var (
	phoneRegex      = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	postalCodeRegex = regexp.MustCompile(`^[0-9]{4,10}$`)
)

func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// NormalizePhone strips spaces, dashes and parentheses.
func NormalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

func IsPhone(s string) bool {
	return phoneRegex.MatchString(NormalizePhone(s))
}

func IsPostalCode(s string) bool {
	return postalCodeRegex.MatchString(strings.TrimSpace(s))
}

// Sanitize drops angle brackets, script protocols and inline handlers from free text.
func Sanitize(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = scriptProtoRegex.ReplaceAllString(s, "")
	s = inlineHandlerRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var (
	scriptProtoRegex   = regexp.MustCompile(`(?i)javascript:`)
	inlineHandlerRegex = regexp.MustCompile(`(?i)on\w+=`)
)

// Validator accumulates field errors.
type Validator struct {
	fields []apperr.FieldError
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.fields = append(v.fields, apperr.FieldError{Field: field, Message: message})
	}
}

func (v *Validator) Required(value, field, message string) {
	v.Check(strings.TrimSpace(value) != "", field, message)
}

func (v *Validator) Length(value string, min, max int, field, message string) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	v.Check(n >= min && (max <= 0 || n <= max), field, message)
}

func (v *Validator) Valid() bool { return len(v.fields) == 0 }

// Err returns nil when no check failed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperr.Validation(v.fields...)
}
