package service

import (
	"errors"

	"reviewhub/internal/http-api/permissions"
)

// Failure taxonomy shared by every service. Handlers map these onto HTTP
// statuses with errors.Is; services wrap them with fmt.Errorf("%w: ...") to
// carry detail.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// authorize turns a permission verdict into the taxonomy: a denied anonymous
// caller lacks credentials, a denied authenticated caller lacks rights.
func authorize(resource permissions.Resource, action permissions.Action, caller permissions.Caller, ownerID string) error {
	if permissions.Can(resource, action, caller.Role, caller.ID, ownerID) {
		return nil
	}
	if caller.Anonymous() {
		return ErrUnauthorized
	}
	return ErrForbidden
}
