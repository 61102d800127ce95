package appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/danbennett239/CI601-sub000/internal/domain/practice"
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

func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/appointments", h.Search)
	public.GET("/appointments/:id", h.Get)

	api.POST("/appointments/:id/book", h.Book, auth.RequireRole(auth.RolePatient))

	staff := api.Group("", auth.RequireRole(auth.RolePractice))
	staff.POST("/appointments", h.Create)
	staff.DELETE("/appointments/:id", h.Delete)
	staff.GET("/practices/:id/calendar", h.Calendar)
}

func httpError(err error) error {
	var (
		ve *ValidationError
		oh *hours.OutOfHoursError
		fe *hours.FormatError
		ge *geo.GeocodeError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, practice.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "practice not found")
	case errors.Is(err, ErrAlreadyBooked):
		return echo.NewHTTPError(http.StatusConflict, "appointment is no longer available")
	case errors.Is(err, practice.ErrNotVerified):
		return echo.NewHTTPError(http.StatusForbidden, "practice is not verified")
	case errors.As(err, &ve), errors.As(err, &oh), errors.As(err, &fe):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &ge):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type createSlotRequest struct {
	PracticeID uuid.UUID  `json:"practice_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	Services   ServiceMap `json:"services"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if req.PracticeID == uuid.Nil {
		req.PracticeID = auth.PracticeIDFromContext(ctx)
	}
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.PracticeIDFromContext(ctx) != req.PracticeID {
		return echo.NewHTTPError(http.StatusForbidden, "practice does not belong to caller")
	}

	a, err := h.svc.CreateSlot(ctx, req.PracticeID, req.StartTime, req.EndTime, req.Services)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.PracticeIDFromContext(ctx) != a.PracticeID {
		return echo.NewHTTPError(http.StatusForbidden, "appointment does not belong to caller")
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Book(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	userID := auth.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	a, err := h.svc.Book(ctx, id, userID, auth.EmailFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func floatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &v, nil
}

func timeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": expected RFC 3339")
	}
	return &v, nil
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	q := SearchQuery{
		Postcode:    c.QueryParam("postcode"),
		ServiceType: c.QueryParam("type"),
		SortBy:      c.QueryParam("sort_by"),
		Limit:       pg.Limit,
		Offset:      pg.Offset,
	}

	var err error
	if q.Latitude, err = floatParam(c, "lat"); err != nil {
		return err
	}
	if q.Longitude, err = floatParam(c, "lon"); err != nil {
		return err
	}
	if q.MaxDistanceKm, err = floatParam(c, "max_distance"); err != nil {
		return err
	}
	if q.PriceMin, err = floatParam(c, "price_min"); err != nil {
		return err
	}
	if q.PriceMax, err = floatParam(c, "price_max"); err != nil {
		return err
	}
	if q.DateStart, err = timeParam(c, "date_start"); err != nil {
		return err
	}
	if q.DateEnd, err = timeParam(c, "date_end"); err != nil {
		return err
	}

	items, total, err := h.svc.Search(c.Request().Context(), q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Calendar(c echo.Context) error {
	practiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.PracticeIDFromContext(ctx) != practiceID {
		return echo.NewHTTPError(http.StatusForbidden, "practice does not belong to caller")
	}

	date := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		}
	}

	slots, err := h.svc.Layout(ctx, practiceID, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"slots": slots,
	})
}
