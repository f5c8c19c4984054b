package customer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() RawInput {
	return RawInput{
		FullName:     "Aina Rahman",
		Email:        "aina@example.com",
		Phone:        "+60123456789",
		Address:      "12 Jalan Bukit, Kuala Lumpur",
		Notes:        "",
		TermsConsent: true,
	}
}

func TestValidateOK(t *testing.T) {
	info, errs := Validate(validInput())
	require.Nil(t, errs)
	require.NotNil(t, info)

	assert.Equal(t, "Aina Rahman", info.FullName)
	assert.Equal(t, "aina@example.com", info.Email)
	assert.True(t, info.TermsConsent)
	assert.Nil(t, info.Notes, "empty notes normalize to nil")
}

func TestValidateTrimsWhitespace(t *testing.T) {
	in := validInput()
	in.FullName = "  Aina Rahman  "
	in.Notes = "  ring the bell twice  "

	info, errs := Validate(in)
	require.Nil(t, errs)
	assert.Equal(t, "Aina Rahman", info.FullName)
	require.NotNil(t, info.Notes)
	assert.Equal(t, "ring the bell twice", *info.Notes)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	// everything empty except consent: name, email, phone, address fail
	// independently; notes stays valid
	info, errs := Validate(RawInput{TermsConsent: true})
	require.Nil(t, info)
	require.Len(t, errs, 4)

	assert.True(t, errs.Has(FieldFullName))
	assert.True(t, errs.Has(FieldEmail))
	assert.True(t, errs.Has(FieldPhone))
	assert.True(t, errs.Has(FieldAddress))
	assert.False(t, errs.Has(FieldNotes))
	assert.False(t, errs.Has(FieldTermsConsent))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"aina@example.com", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"nodot@example", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			in := validInput()
			in.Email = tt.email
			_, errs := Validate(in)
			assert.Equal(t, !tt.ok, errs.Has(FieldEmail))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+60123456789", true},
		{"0123456789", true},
		{"+1 (555) 123-4567", true},
		{"123", false},      // too short
		{"abcdefgh", false}, // letters
		{"+6012345678901234567890", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			in := validInput()
			in.Phone = tt.phone
			_, errs := Validate(in)
			assert.Equal(t, !tt.ok, errs.Has(FieldPhone))
		})
	}
}

func TestValidateNotesLimit(t *testing.T) {
	in := validInput()
	in.Notes = strings.Repeat("a", MaxNotesLen)
	_, errs := Validate(in)
	assert.Nil(t, errs)

	in.Notes = strings.Repeat("a", MaxNotesLen+1)
	_, errs = Validate(in)
	assert.True(t, errs.Has(FieldNotes))

	// rune limit, not byte limit
	in.Notes = strings.Repeat("あ", MaxNotesLen)
	_, errs = Validate(in)
	assert.Nil(t, errs)
}

func TestValidateTermsConsent(t *testing.T) {
	in := validInput()
	in.TermsConsent = false

	info, errs := Validate(in)
	require.Nil(t, info)
	require.Len(t, errs, 1)
	assert.True(t, errs.Has(FieldTermsConsent))
}

func TestValidateIsIdempotent(t *testing.T) {
	in := RawInput{Email: "broken", Phone: "1"}

	_, first := Validate(in)
	_, second := Validate(in)
	assert.Equal(t, first, second)
}
