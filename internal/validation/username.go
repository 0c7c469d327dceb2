package validation

import (
	"errors"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername checks the handle chosen at signup. Derived handles
// (display name or email local part plus a random suffix) always pass.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > 64 {
		return errors.New("username is too long (max 64 characters)")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, digits, dots, dashes and underscores")
	}
	return nil
}
