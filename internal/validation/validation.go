package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalid marks malformed request input.
var ErrInvalid = errors.New("invalid request")

const maxDimensionLen = 100

// UsernamePattern defines the valid local username format.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]{1,64}$`)

// ParseYear parses a required year query parameter. Any integer is accepted; a
// year with no data simply matches nothing.
func ParseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: year is required", ErrInvalid)
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: year must be an integer, got %q", ErrInvalid, raw)
	}
	return year, nil
}

// ParseOptionalYear is ParseYear for filters that may be omitted. An empty
// value yields nil.
func ParseOptionalYear(raw string) (*int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	year, err := ParseYear(raw)
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// Dimension validates a state or type filter value and returns it trimmed.
// Empty is allowed and means no restriction.
func Dimension(name, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) > maxDimensionLen {
		return "", fmt.Errorf("%w: %s is too long", ErrInvalid, name)
	}
	if strings.IndexFunc(v, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: %s contains control characters", ErrInvalid, name)
	}
	return v, nil
}

// RequiredDimension is Dimension for parameters that must be present.
func RequiredDimension(name, raw string) (string, error) {
	v, err := Dimension(name, raw)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalid, name)
	}
	return v, nil
}

// Credentials checks the shape of a login request before any lookup.
func Credentials(username, password string) error {
	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if password == "" || len(password) > 72 {
		return fmt.Errorf("%w: password is required", ErrInvalid)
	}
	return nil
}
