package lifecycle

import "github.com/iliyamo/civic-service-desk/internal/model"

// Access predicates are pure: they evaluate role and ownership against
// a resolved identity and never touch the store.

// CanReadRequest reports whether the identity may see the request.
// Admins read everything; citizens read only their own submissions.
func CanReadRequest(id model.Identity, sr model.ServiceRequest) bool {
	return id.IsAdmin() || id.UserID == sr.UserID
}

// CanMutateStatus reports whether the identity may drive the request
// lifecycle. Ownership never grants this: the owner may create and
// read, but only admins transition status.
func CanMutateStatus(id model.Identity) bool {
	return id.IsAdmin()
}

// RequireRole gates entry to role-restricted operations. A zero
// identity yields ErrUnauthorized, a valid identity with the wrong
// role yields ErrForbidden.
func RequireRole(id model.Identity, role model.Role) error {
	if id.UserID == 0 {
		return ErrUnauthorized
	}
	if id.Role != role {
		return ErrForbidden
	}
	return nil
}
