// Package validation holds the field validators shared by the signup flow and
// the admin user endpoints. Limits are an explicit struct handed to the
// validators at construction instead of package-level settings.
package validation

import (
	"fmt"
	"regexp"
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Limits struct {
	MaxUsernameLen int
	MaxEmailLen    int
	MaxSlugLen     int
	MaxNameLen     int
	ReservedName   string
}

// DefaultLimits mirrors the lengths enforced by the database schema.
func DefaultLimits() Limits {
	return Limits{
		MaxUsernameLen: 150,
		MaxEmailLen:    254,
		MaxSlugLen:     50,
		MaxNameLen:     256,
		ReservedName:   "me",
	}
}

func (l Limits) Username(v string) error {
	if v == "" {
		return fmt.Errorf("username is required")
	}
	if v == l.ReservedName {
		return fmt.Errorf("username %q is reserved", l.ReservedName)
	}
	if len(v) > l.MaxUsernameLen {
		return fmt.Errorf("username exceeds %d characters", l.MaxUsernameLen)
	}
	if !usernameRe.MatchString(v) {
		return fmt.Errorf("username contains invalid characters")
	}
	return nil
}

func (l Limits) Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > l.MaxEmailLen {
		return fmt.Errorf("email exceeds %d characters", l.MaxEmailLen)
	}
	if !emailRe.MatchString(v) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func (l Limits) Slug(v string) error {
	if v == "" {
		return fmt.Errorf("slug is required")
	}
	if len(v) > l.MaxSlugLen {
		return fmt.Errorf("slug exceeds %d characters", l.MaxSlugLen)
	}
	if !slugRe.MatchString(v) {
		return fmt.Errorf("slug contains invalid characters")
	}
	return nil
}

func (l Limits) Name(v string) error {
	if v == "" {
		return fmt.Errorf("name is required")
	}
	if len(v) > l.MaxNameLen {
		return fmt.Errorf("name exceeds %d characters", l.MaxNameLen)
	}
	return nil
}
