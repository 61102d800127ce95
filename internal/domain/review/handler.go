package review

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/danbennett239/CI601-sub000/internal/domain/appointment"
	"github.com/danbennett239/CI601-sub000/internal/platform/auth"
	"github.com/danbennett239/CI601-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/practices/:id/reviews", h.ListByPractice)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/reviews", h.Create)
	patient.PUT("/reviews/:id", h.Update)
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	case errors.Is(err, appointment.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrNotReviewer):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type reviewRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Rating        float64   `json:"rating"`
	Comment       *string   `json:"comment,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if userID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	r, err := h.svc.Create(c.Request().Context(), req.AppointmentID, userID, req.Rating, req.Comment)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if userID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	r, err := h.svc.Update(c.Request().Context(), id, userID, req.Rating, req.Comment)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListByPractice(c echo.Context) error {
	practiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)

	summary, err := h.svc.ListByPractice(c.Request().Context(), practiceID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
