// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names shared by the publisher and the notification consumer.
const (
	StatusChangedQueue = "request.status.changed"
	PasswordResetQueue = "password.reset.requested"
)

// StatusChangedEvent is published when an admin moves a service request
// to a new status. It carries enough information for downstream
// consumers to notify the requester without querying the primary
// database.
type StatusChangedEvent struct {
	RequestID   uint64 `json:"request_id"`
	UserID      uint64 `json:"user_id"`
	ServiceType string `json:"service_type"`
	Status      string `json:"status"`
	ChangedAt   string `json:"changed_at"`
}

// PasswordResetEvent is published when a user asks for a password
// reset. The mail system consumes it and delivers the token out of
// band; this service never sends email itself.
type PasswordResetEvent struct {
	UserID    uint64 `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
