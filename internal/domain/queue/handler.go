package queue

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	desk := api.Group("/queue", auth.RequireRole(auth.RoleDoctor, auth.RoleSecretary))
	desk.POST("/check-in", h.CheckIn)
	desk.GET("", h.TodayBoard)
	desk.DELETE("/:entryId", h.RemoveEntry)
}

func (h *Handler) CheckIn(c echo.Context) error {
	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role := auth.ActingRole(c.Request().Context())
	adm, err := h.svc.CheckIn(c.Request().Context(), req, role)
	if err != nil {
		if errors.Is(err, visit.ErrInvalidPatientReference) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, adm)
}

func (h *Handler) TodayBoard(c echo.Context) error {
	entries, err := h.svc.TodayBoard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) RemoveEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	if err := h.svc.RemoveEntry(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
