package billing

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the billing API on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/bills", h.Create)
	g.GET("/bills", h.List)
	g.GET("/bills/:id", h.Get)
	g.PATCH("/bills/:id/status", h.SetStatus)
	g.GET("/cards/:cardId/bills", h.ListByCard)
}

type CreateBillRequest struct {
	CardID      string        `json:"card_id"`
	PatientName string        `json:"patient_name"`
	DoctorName  string        `json:"doctor_name"`
	LabName     string        `json:"lab_name"`
	Services    []ServiceLine `json:"services"`
	DueDate     string        `json:"due_date"`
	Notes       *string       `json:"notes"`
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bill := &Bill{
		CardID:      req.CardID,
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		LabName:     req.LabName,
		Services:    req.Services,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	}
	if err := h.svc.Create(c.Request().Context(), bill); err != nil {
		if errors.Is(err, ErrInvalidBill) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, bill)
}

func (h *Handler) List(c echo.Context) error {
	bills, err := h.svc.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bills)
}

func (h *Handler) Get(c echo.Context) error {
	bill, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) ListByCard(c echo.Context) error {
	bills, err := h.svc.ListByCard(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bills)
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	var req SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bill, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrBadTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, bill)
}
