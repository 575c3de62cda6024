package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/lifecycle"
	"github.com/iliyamo/civic-service-desk/internal/queue"
	queue_publisher "github.com/iliyamo/civic-service-desk/internal/service"
)

// AdminHandler serves the triage endpoints. The admin role is enforced
// by middleware on the route group; the engine re-checks it anyway so
// the rules hold even if a route is wired without the guard.
type AdminHandler struct {
	Engine *lifecycle.Engine
}

func NewAdminHandler(engine *lifecycle.Engine) *AdminHandler {
	if engine == nil {
		panic("nil engine passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: engine}
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// ListRequests returns one page of all requests, optionally filtered
// by status. Query parameters: page, limit, status.
func (h *AdminHandler) ListRequests(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	result, err := h.Engine.ListAll(ctx, ident, c.QueryParam("status"), page, limit)
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"requests":   result.Requests,
		"pagination": result.Pagination,
		"filter":     result.Filter,
	})
}

// GetRequest returns one request by id, joined with the requester's
// name and email like the listing.
func (h *AdminHandler) GetRequest(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "Service request not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Engine.GetDetail(ctx, ident, id)
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"request": d,
	})
}

// UpdateStatus transitions a request to a new status and notifies the
// requester through the broker. Re-submitting the current status is a
// no-op success.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "Service request not found")
	}

	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr, err := h.Engine.UpdateStatus(ctx, ident, id, req.Status)
	if err != nil {
		return lifecycleError(c, err)
	}

	// Best effort: a broker outage must not fail the status change.
	_ = queue_publisher.PublishStatusChanged(ctx, queue.StatusChangedEvent{
		RequestID:   sr.ID,
		UserID:      sr.UserID,
		ServiceType: sr.ServiceType,
		Status:      string(sr.Status),
		ChangedAt:   sr.UpdatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Request status updated to " + string(sr.Status),
		"request": sr,
	})
}

// Stats returns global request counts grouped by status.
func (h *AdminHandler) Stats(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Engine.AdminStats(ctx, ident)
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"stats":   stats,
	})
}
