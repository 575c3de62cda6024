package model

import "time"

// Status enumerates the lifecycle states of a service request. The
// canonical vocabulary uses "completed" for finished work; there is
// no separate "resolved" state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Priority enumerates the urgency levels a citizen can assign when
// submitting a request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium" // default when none supplied
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// transitions is the full status graph. Completed and rejected are
// reachable end states but not absorbing: both can be reopened, which
// is deliberate operational policy.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusPending},
	StatusCompleted:  {StatusInProgress},
	StatusRejected:   {StatusPending},
}

// CanTransitionTo reports whether moving from s to next is a legal
// status change. Identity transitions (s == next) are not part of the
// graph; callers treat them as no-ops.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// ParseStatus validates a client-supplied status value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// ParsePriority validates a client-supplied priority value.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	}
	return "", false
}

// ServiceRequest records a citizen's submission as stored in the
// `service_requests` table. Unlike User, this struct carries JSON
// tags because it is returned verbatim inside response envelopes.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner; only this user (or an admin) may read the row.
//  ServiceType   – requested service category (e.g. road_repair).
//  Description   – what needs doing.
//  Location      – free-text location of the issue.
//  ExactLocation – optional geo link or coordinates.
//  Priority      – urgency chosen by the submitter.
//  Status        – current lifecycle state.
//  ImagePath     – relative path of the attached photo, if one was uploaded.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – refreshed on every status change.
type ServiceRequest struct {
	ID            uint64    `json:"id"`             // service_requests.id
	UserID        uint64    `json:"user_id"`        // service_requests.user_id
	ServiceType   string    `json:"service_type"`   // service_requests.service_type
	Description   string    `json:"description"`    // service_requests.description
	Location      string    `json:"location"`       // service_requests.location
	ExactLocation *string   `json:"exact_location"` // service_requests.exact_location (nullable)
	Priority      Priority  `json:"priority"`       // service_requests.priority
	Status        Status    `json:"status"`         // service_requests.status
	ImagePath     *string   `json:"image_path"`     // service_requests.image_path (nullable)
	CreatedAt     time.Time `json:"created_at"`     // service_requests.created_at
	UpdatedAt     time.Time `json:"updated_at"`     // service_requests.updated_at
}

// RequestDetail is a ServiceRequest joined with its requester's name
// and email, as shown on the admin listing and detail views.
type RequestDetail struct {
	ServiceRequest
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
