package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/lifecycle"
	"github.com/iliyamo/civic-service-desk/internal/storage"
)

// CitizenHandler serves the endpoints a citizen uses to submit and
// follow their own service requests.
type CitizenHandler struct {
	Engine *lifecycle.Engine
	Images *storage.LocalStore
}

func NewCitizenHandler(engine *lifecycle.Engine, images *storage.LocalStore) *CitizenHandler {
	if engine == nil || images == nil {
		panic("nil dependency passed to NewCitizenHandler")
	}
	return &CitizenHandler{Engine: engine, Images: images}
}

// CreateRequest accepts a multipart form with the request fields and an
// optional single image. The image is written to disk before the row
// is inserted; if the insert fails the file is removed again, so no
// stored reference ever dangles.
func (h *CitizenHandler) CreateRequest(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	in := lifecycle.CreateInput{
		ServiceType:   c.FormValue("service_type"),
		Description:   c.FormValue("description"),
		Location:      c.FormValue("location"),
		ExactLocation: c.FormValue("exact_location"),
		Priority:      c.FormValue("priority"),
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		file, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "Could not read uploaded image")
		}
		rel, saveErr := h.Images.Save(file, fh)
		_ = file.Close()
		if saveErr != nil {
			switch {
			case errors.Is(saveErr, storage.ErrTooLarge):
				return fail(c, http.StatusBadRequest, "Image exceeds the 5MB size limit")
			case errors.Is(saveErr, storage.ErrNotImage):
				return fail(c, http.StatusBadRequest, "Only image uploads are allowed")
			}
			return fail(c, http.StatusInternalServerError, "Failed to store uploaded image")
		}
		in.ImagePath = rel
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr, err := h.Engine.Create(ctx, ident, in)
	if err != nil {
		if in.ImagePath != "" {
			_ = h.Images.Remove(in.ImagePath)
		}
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Service request submitted successfully",
		"request": sr,
	})
}

// ListRequests returns the caller's own requests, newest first.
func (h *CitizenHandler) ListRequests(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	requests, err := h.Engine.ListOwn(ctx, ident)
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"requests": requests,
	})
}

// Stats returns the caller's own request counts grouped by status.
func (h *CitizenHandler) Stats(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Engine.Stats(ctx, ident)
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"stats":   stats,
	})
}
