package practice

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/danbennett239/CI601-sub000/internal/platform/auth"
	"github.com/danbennett239/CI601-sub000/internal/platform/geo"
	"github.com/danbennett239/CI601-sub000/internal/platform/hours"
	"github.com/danbennett239/CI601-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts browse/onboarding routes on the public group and
// management routes on the authenticated group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/practices", h.List)
	public.GET("/practices/:id", h.Get)
	public.POST("/practices", h.Create)

	staff := api.Group("", auth.RequireRole(auth.RolePractice))
	staff.PUT("/practices/:id", h.Update)
	staff.PUT("/practices/:id/opening-hours", h.UpdateOpeningHours)
	staff.GET("/practices/:id/preferences", h.GetPreferences)
	staff.PUT("/practices/:id/preferences", h.UpdatePreferences)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/practices/:id/verify", h.Verify)
	admin.POST("/practices/:id/deny", h.Deny)
}

// ownsPractice rejects staff tokens that belong to a different practice.
// Admin tokens pass.
func ownsPractice(c echo.Context, id uuid.UUID) error {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		return nil
	}
	if auth.PracticeIDFromContext(ctx) != id {
		return echo.NewHTTPError(http.StatusForbidden, "practice does not belong to caller")
	}
	return nil
}

func httpError(err error) error {
	var (
		ve *ValidationError
		fe *hours.FormatError
		ge *geo.GeocodeError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "practice not found")
	case errors.As(err, &ve), errors.As(err, &fe):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &ge):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	var p Practice
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	verifiedOnly := c.QueryParam("include_pending") != "true"
	items, total, err := h.svc.List(c.Request().Context(), verifiedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ownsPractice(c, id); err != nil {
		return err
	}
	var p Practice
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// hoursConflictResponse surfaces every offending appointment id so the
// dashboard can list them in one round trip.
type hoursConflictResponse struct {
	Error          string      `json:"error"`
	AppointmentIDs []uuid.UUID `json:"appointment_ids"`
}

func (h *Handler) UpdateOpeningHours(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ownsPractice(c, id); err != nil {
		return err
	}
	var oh OpeningHours
	if err := c.Bind(&oh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateOpeningHours(c.Request().Context(), id, oh); err != nil {
		var conflict *HoursConflictError
		if errors.As(err, &conflict) {
			return c.JSON(http.StatusConflict, hoursConflictResponse{
				Error:          conflict.Error(),
				AppointmentIDs: conflict.AppointmentIDs,
			})
		}
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Verify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Verify(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Deny(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Deny(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetPreferences(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ownsPractice(c, id); err != nil {
		return err
	}
	prefs, err := h.svc.GetPreferences(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ownsPractice(c, id); err != nil {
		return err
	}
	var prefs Preferences
	if err := c.Bind(&prefs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	prefs.PracticeID = id
	if err := h.svc.UpdatePreferences(c.Request().Context(), &prefs); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prefs)
}
