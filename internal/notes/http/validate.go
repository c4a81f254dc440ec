package http

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 6
	titleMaxLen    = 200
	contentMaxLen  = 10000
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func validateUsername(username string) error {
	// Limits are character counts, not byte lengths.
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return fmt.Errorf("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	}
	if !usernameRe.MatchString(username) {
		return errors.New("username may only contain letters, digits and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return errors.New("email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func validateNote(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > titleMaxLen {
		return fmt.Errorf("title must be at most %d characters", titleMaxLen)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}
	if utf8.RuneCountInString(content) > contentMaxLen {
		return fmt.Errorf("content must be at most %d characters", contentMaxLen)
	}
	return nil
}

// sanitizeText trims whitespace and escapes HTML metacharacters so stored
// note text is inert if ever rendered verbatim.
func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
