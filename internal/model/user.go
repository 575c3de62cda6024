package model

import "time"

// Role names the coarse permission level attached to a user account.
// Citizens may create and read their own service requests; admins may
// read everything and drive the request lifecycle.
type Role string

const (
	RoleCitizen Role = "citizen" // default role assigned at registration
	RoleAdmin   Role = "admin"   // granted out of band, never self-assigned
)

// User represents an application user record as stored in the
// `users` table. The json tags are omitted because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Name             – display name given at registration.
//  Email            – unique email address (stored as given, matched exactly).
//  PasswordHash     – bcrypt hashed password.
//  Role             – permission level (citizen or admin).
//  ResetToken       – outstanding password-reset token, if any.
//  ResetTokenExpiry – when the reset token lapses (null if none).
//  CreatedAt        – timestamp of creation.
type User struct {
	ID               uint64     // users.id
	Name             string     // users.name
	Email            string     // users.email
	PasswordHash     string     // users.password_hash
	Role             Role       // users.role
	ResetToken       *string    // users.reset_token (nullable)
	ResetTokenExpiry *time.Time // users.reset_token_expiry (nullable)
	CreatedAt        time.Time  // users.created_at
}

// Identity is the resolved subject of a validated session token.
// It carries the claims embedded at issuance time; a role change in
// the store only takes effect on the next login, because sessions
// are stateless and carry no revocation.
type Identity struct {
	UserID uint64
	Email  string
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
