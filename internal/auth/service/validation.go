package service

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/talkroom-app/backend/internal/common/constants"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	errUsernameLength = validationError(fmt.Sprintf(
		"username must be between %d and %d characters",
		constants.UsernameMinLength, constants.UsernameMaxLength,
	))
	errUsernameChars = validationError(
		"username may contain only latin letters, digits, '-' and '_' and must start and end with a letter or digit",
	)
	errPasswordLength = validationError(fmt.Sprintf(
		"password must be between %d and %d characters",
		constants.PasswordMinLength, constants.PasswordMaxLength,
	))
	errPasswordContent = validationError("password must contain at least one letter and one digit")
)

func validationError(message string) commonerrors.DomainError {
	return commonerrors.NewDomainError("VALIDATION_FAILED", commonerrors.CategoryValidation, 400, message)
}

func ValidateUsername(username string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return errUsernameLength
	}
	if !isValidUsername(username) {
		return errUsernameChars
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return errPasswordLength
	}
	if !isValidPassword(password) {
		return errPasswordContent
	}
	return nil
}

func validateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}

func isValidUsername(value string) bool {
	if !usernameRegex.MatchString(value) {
		return false
	}

	first := rune(value[0])
	last := rune(value[len(value)-1])
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return false
	}
	if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return false
	}

	return true
}

func isValidPassword(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}
