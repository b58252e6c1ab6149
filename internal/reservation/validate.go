package reservation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// NormalizeTime accepts a 24-hour "HH:MM" (or "H:MM") value and returns it
// zero-padded.
func NormalizeTime(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", false
	}
	return t.Format("15:04"), true
}

func ValidTime(raw string) bool {
	_, ok := NormalizeTime(raw)
	return ok
}

type Contact struct {
	Name  string
	Phone string
	Email string
	Notes string
}

func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
		Notes: strings.TrimSpace(c.Notes),
	}
}

// Validate requires name, phone and email; notes are optional.
func (c Contact) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if !validPhone(c.Phone) {
		return fmt.Errorf("%w: phone must contain 6-15 digits", ErrInvalidContact)
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return fmt.Errorf("%w: email is not valid", ErrInvalidContact)
	}
	if len(c.Notes) > 500 {
		return fmt.Errorf("%w: notes are limited to 500 characters", ErrInvalidContact)
	}
	return nil
}

func validPhone(p string) bool {
	digits := 0
	for i, r := range p {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0, r == ' ', r == '-', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= 6 && digits <= 15
}
