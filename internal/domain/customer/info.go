// internal/domain/customer/info.go
package customer

import (
	"regexp"
	"strings"
)

// Field keys used in FieldErrors.
const (
	FieldFullName     = "fullName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldNotes        = "notes"
	FieldTermsConsent = "termsConsent"
)

// MaxNotesLen is the rune limit for the optional notes field.
const MaxNotesLen = 200

var (
	// shape check only: single @, non-empty local part and dotted domain
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// shape check only, not a real phone-number validator:
	// optional leading +, then 7-20 chars of digits / hyphen / space / parens
	phoneRe = regexp.MustCompile(`^\+?[0-9\-\s()]{7,20}$`)
)

// RawInput is the unvalidated contact/address form as submitted.
type RawInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
	TermsConsent bool   `json:"termsConsent"`
}

// Info is a validated customer record.
// It is constructed only by Validate and is never partially valid.
type Info struct {
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Notes        *string `json:"notes,omitempty"`
	TermsConsent bool    `json:"termsConsent"`
}

// FieldErrors maps a field key to a user-facing message.
// Empty map (or nil) means the input is valid.
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Validate checks every rule independently and collects all errors
// (never just the first). It is idempotent: the same input always
// yields the same error set.
//
// On success it returns (info, nil); on failure (nil, errors).
func Validate(in RawInput) (*Info, FieldErrors) {
	errs := FieldErrors{}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		errs[FieldFullName] = "full name is required"
	}

	email := strings.TrimSpace(in.Email)
	if !emailRe.MatchString(email) {
		errs[FieldEmail] = "enter a valid email address"
	}

	phone := strings.TrimSpace(in.Phone)
	if !phoneRe.MatchString(phone) {
		errs[FieldPhone] = "enter a valid phone number"
	}

	address := strings.TrimSpace(in.Address)
	if address == "" {
		errs[FieldAddress] = "address is required"
	}

	notes := strings.TrimSpace(in.Notes)
	if len([]rune(notes)) > MaxNotesLen {
		errs[FieldNotes] = "notes must be 200 characters or less"
	}

	// must be exactly true; anything else is an error, not a warning
	if !in.TermsConsent {
		errs[FieldTermsConsent] = "you must accept the terms to continue"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	info := &Info{
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		Address:      address,
		TermsConsent: true,
	}
	if notes != "" {
		info.Notes = &notes
	}
	return info, nil
}
