// Package permissions decides, for a given caller and operation, whether the
// operation may proceed. The decision is a pure function of the caller's role,
// the caller's identity and (for owned resources) the resource owner's
// identity, so it can be tested against the full truth table without any
// storage or HTTP machinery.
package permissions

import "fmt"

// Role is a closed set. Anything outside the four constants is rejected by
// ParseRole so an invalid role can never reach a permission check.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return RoleAnonymous, fmt.Errorf("unknown role %q", s)
}

func (r Role) IsAdmin() bool     { return r == RoleAdmin }
func (r Role) IsModerator() bool { return r == RoleModerator }

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

type Resource int

const (
	ResourceCategory Resource = iota
	ResourceGenre
	ResourceTitle
	ResourceReview
	ResourceComment
	ResourceUser
)

type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Caller identifies the requesting user as established by the auth
// middleware. The zero value is an anonymous caller.
type Caller struct {
	ID       string
	Username string
	Role     Role
}

func (c Caller) Anonymous() bool {
	return c.ID == ""
}

// Can reports whether a caller with the given role and identity may perform
// action on resource. ownerID is the authoring user of the target review or
// comment and is ignored for everything else.
func Can(resource Resource, action Action, role Role, callerID, ownerID string) bool {
	switch resource {
	case ResourceCategory, ResourceGenre, ResourceTitle:
		if action == ActionList || action == ActionRetrieve {
			return true
		}
		return role == RoleAdmin

	case ResourceReview, ResourceComment:
		switch action {
		case ActionList, ActionRetrieve:
			return true
		case ActionCreate:
			return callerID != ""
		default:
			if role == RoleAdmin || role == RoleModerator {
				return true
			}
			return callerID != "" && callerID == ownerID
		}

	case ResourceUser:
		// The whole user collection is admin territory. Self access goes
		// through the /users/me operations, which never consult Can.
		return role == RoleAdmin
	}
	return false
}
