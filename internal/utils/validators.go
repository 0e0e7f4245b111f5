// internal/utils/validators.go
// Validation utility functions

package utils

import (
	"fmt"
	"net/mail"
	"time"
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateEventTitle validates an event title
func ValidateEventTitle(name string) error {
	if len(name) < 3 {
		return fmt.Errorf("event title must be at least 3 characters long")
	}
	if len(name) > 255 {
		return fmt.Errorf("event title must not exceed 255 characters")
	}
	return nil
}

// ValidateTimezone validates timezone string
func ValidateTimezone(tz string) error {
	_, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone")
	}
	return nil
}
