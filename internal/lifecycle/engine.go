package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/civic-service-desk/internal/model"
	"github.com/iliyamo/civic-service-desk/internal/repository"
)

// RequestStore is the persistence surface the engine needs. It is
// implemented by repository.RequestRepo; tests supply in-memory fakes.
// Implementations return repository.ErrNotFound for missing rows.
type RequestStore interface {
	Create(ctx context.Context, sr *model.ServiceRequest) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.ServiceRequest, error)
	ListAll(ctx context.Context, status model.Status, limit, offset int) ([]model.RequestDetail, int, error)
	GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error)
	GetDetailByID(ctx context.Context, id uint64) (model.RequestDetail, error)
	UpdateStatusFrom(ctx context.Context, id uint64, from, to model.Status, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
	CountByStatusForOwner(ctx context.Context, ownerID uint64) (map[model.Status]int, error)
}

// Engine is the orchestration point for every service-request
// operation. It owns validation, the state machine and the access
// checks; handlers stay thin.
type Engine struct {
	store RequestStore
}

func NewEngine(store RequestStore) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{store: store}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// CreateInput carries the client-supplied fields of a new request.
// Owner and status are never taken from the client.
type CreateInput struct {
	ServiceType   string
	Description   string
	Location      string
	ExactLocation string
	Priority      string
	ImagePath     string
}

// Create validates the payload and persists a new request. Status is
// forced to pending and the owner is forced to the authenticated
// caller regardless of anything in the payload, which prevents
// impersonation.
func (e *Engine) Create(ctx context.Context, id model.Identity, in CreateInput) (model.ServiceRequest, error) {
	if id.UserID == 0 {
		return model.ServiceRequest{}, ErrUnauthorized
	}
	serviceType := strings.TrimSpace(in.ServiceType)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	if serviceType == "" || description == "" || location == "" {
		return model.ServiceRequest{}, errValidation("Service type, description, and location are required")
	}

	priority := model.PriorityMedium
	if p := strings.TrimSpace(in.Priority); p != "" {
		parsed, ok := model.ParsePriority(p)
		if !ok {
			return model.ServiceRequest{}, errValidation("Invalid priority value")
		}
		priority = parsed
	}

	sr := model.ServiceRequest{
		UserID:      id.UserID,
		ServiceType: serviceType,
		Description: description,
		Location:    location,
		Priority:    priority,
		Status:      model.StatusPending,
	}
	if v := strings.TrimSpace(in.ExactLocation); v != "" {
		sr.ExactLocation = &v
	}
	if in.ImagePath != "" {
		v := in.ImagePath
		sr.ImagePath = &v
	}

	if err := e.store.Create(ctx, &sr); err != nil {
		return model.ServiceRequest{}, storeErr(err)
	}
	return sr, nil
}

// ListOwn returns the caller's own requests, newest first.
func (e *Engine) ListOwn(ctx context.Context, id model.Identity) ([]model.ServiceRequest, error) {
	if id.UserID == 0 {
		return nil, ErrUnauthorized
	}
	out, err := e.store.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// Pagination describes one page of an admin listing.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalRequests int  `json:"totalRequests"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// Filter echoes back which status slice a listing covers.
type Filter struct {
	Status  string `json:"status"`
	Showing string `json:"showing"`
}

// Page is the admin listing result.
type Page struct {
	Requests   []model.RequestDetail `json:"requests"`
	Pagination Pagination            `json:"pagination"`
	Filter     Filter                `json:"filter"`
}

// ListAll returns one page of all requests. Admin only. statusFilter is
// either a concrete status or "all" (also the default when empty).
func (e *Engine) ListAll(ctx context.Context, id model.Identity, statusFilter string, page, limit int) (Page, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return Page{}, err
	}
	var status model.Status
	if statusFilter == "" {
		statusFilter = "all"
	}
	if statusFilter != "all" {
		parsed, ok := model.ParseStatus(statusFilter)
		if !ok {
			return Page{}, errValidation("Invalid status filter")
		}
		status = parsed
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	requests, total, err := e.store.ListAll(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return Page{}, storeErr(err)
	}

	totalPages := (total + limit - 1) / limit
	showing := "all requests"
	if statusFilter != "all" {
		showing = statusFilter + " requests"
	}
	return Page{
		Requests: requests,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    totalPages,
			TotalRequests: total,
			HasNext:       page < totalPages,
			HasPrev:       page > 1,
		},
		Filter: Filter{Status: statusFilter, Showing: showing},
	}, nil
}

// OwnStats summarizes one citizen's requests by status.
type OwnStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Rejected   int `json:"rejected"`
}

// Stats returns counts of the caller's own requests grouped by status.
func (e *Engine) Stats(ctx context.Context, id model.Identity) (OwnStats, error) {
	if id.UserID == 0 {
		return OwnStats{}, ErrUnauthorized
	}
	counts, err := e.store.CountByStatusForOwner(ctx, id.UserID)
	if err != nil {
		return OwnStats{}, storeErr(err)
	}
	s := OwnStats{
		Pending:    counts[model.StatusPending],
		InProgress: counts[model.StatusInProgress],
		Completed:  counts[model.StatusCompleted],
		Rejected:   counts[model.StatusRejected],
	}
	for _, n := range counts {
		s.Total += n
	}
	return s, nil
}

// GlobalStats summarizes all requests in the system.
type GlobalStats struct {
	Total    int                  `json:"total"`
	ByStatus map[model.Status]int `json:"byStatus"`
}

// AdminStats returns global counts grouped by status. Admin only.
func (e *Engine) AdminStats(ctx context.Context, id model.Identity) (GlobalStats, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return GlobalStats{}, err
	}
	counts, err := e.store.CountByStatus(ctx)
	if err != nil {
		return GlobalStats{}, storeErr(err)
	}
	s := GlobalStats{ByStatus: counts}
	for _, n := range counts {
		s.Total += n
	}
	return s, nil
}

// GetByID fetches one request, enforcing read access. A request the
// caller may not read is reported as not found rather than forbidden,
// so unauthorized probing cannot confirm that an id exists.
func (e *Engine) GetByID(ctx context.Context, id model.Identity, requestID uint64) (model.ServiceRequest, error) {
	if id.UserID == 0 {
		return model.ServiceRequest{}, ErrUnauthorized
	}
	sr, err := e.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, ErrNotFound
		}
		return model.ServiceRequest{}, storeErr(err)
	}
	if !CanReadRequest(id, sr) {
		return model.ServiceRequest{}, ErrNotFound
	}
	return sr, nil
}

// GetDetail fetches one request joined with the requester's name and
// email, so triage sees who filed it. Admin only; citizens read their
// own requests through GetByID without the join.
func (e *Engine) GetDetail(ctx context.Context, id model.Identity, requestID uint64) (model.RequestDetail, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return model.RequestDetail{}, err
	}
	d, err := e.store.GetDetailByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.RequestDetail{}, ErrNotFound
		}
		return model.RequestDetail{}, storeErr(err)
	}
	return d, nil
}

// UpdateStatus transitions a request to newStatus. Admin only. The
// transition is validated against the state machine and applied as a
// conditional update keyed on the status just read, so concurrent
// admin edits cannot silently overwrite each other. Re-submitting the
// current status is an idempotent no-op success.
func (e *Engine) UpdateStatus(ctx context.Context, id model.Identity, requestID uint64, newStatus string) (model.ServiceRequest, error) {
	if id.UserID == 0 {
		return model.ServiceRequest{}, ErrUnauthorized
	}
	if !CanMutateStatus(id) {
		return model.ServiceRequest{}, ErrForbidden
	}
	target, ok := model.ParseStatus(newStatus)
	if !ok {
		return model.ServiceRequest{}, errValidation("Invalid status")
	}

	sr, err := e.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, ErrNotFound
		}
		return model.ServiceRequest{}, storeErr(err)
	}
	if sr.Status == target {
		return sr, nil
	}
	if !sr.Status.CanTransitionTo(target) {
		return model.ServiceRequest{}, ErrInvalidTransition
	}

	now := time.Now().UTC()
	applied, err := e.store.UpdateStatusFrom(ctx, requestID, sr.Status, target, now)
	if err != nil {
		return model.ServiceRequest{}, storeErr(err)
	}
	if !applied {
		return model.ServiceRequest{}, ErrConflict
	}
	sr.Status = target
	sr.UpdatedAt = now
	return sr, nil
}
