package models

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8
)

// NormalizeUsername lowercases and trims a candidate username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims a candidate email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername checks the normalized username against the account rules:
// 3-20 characters drawn from lowercase letters, digits, and underscores.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return fmt.Errorf("username may only contain lowercase letters, digits, and underscores")
		}
	}
	return nil
}

// ValidateEmail checks the normalized email is a parseable address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword checks the plain-text password before it is hashed.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}
	return nil
}
