package card

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ImageRenderer produces the printable card images served from the image
// endpoint. Implemented by the platform render package.
type ImageRenderer interface {
	RenderPNG(c *Card, side string) ([]byte, error)
	FileName(c *Card, side string) string
}

type Handler struct {
	svc      *Service
	renderer ImageRenderer
}

func NewHandler(svc *Service, renderer ImageRenderer) *Handler {
	return &Handler{svc: svc, renderer: renderer}
}

// RegisterRoutes mounts the authenticated card API on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/cards", h.Create)
	g.GET("/cards", h.List)
	g.GET("/cards/stats", h.Stats)
	g.GET("/cards/:cardId", h.Get)
}

// RegisterPublicRoutes mounts the unauthenticated verification and image
// endpoints. These are the URLs encoded into printed QR codes.
func (h *Handler) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/c/:cardId", h.Verify)
	e.GET("/cards/:cardId/image", h.Image)
}

type CreateCardRequest struct {
	CardID       string `json:"card_id"`
	Patient      string `json:"patient"`
	Doctor       string `json:"doctor"`
	Lab          string `json:"lab"`
	CaseID       string `json:"case_id"`
	DoctorMobile string `json:"doctor_mobile"`
	LabMobile    string `json:"lab_mobile"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card := &Card{
		CardID:       req.CardID,
		Patient:      req.Patient,
		Doctor:       req.Doctor,
		Lab:          req.Lab,
		CaseID:       req.CaseID,
		DoctorMobile: req.DoctorMobile,
		LabMobile:    req.LabMobile,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
	}
	if err := h.svc.Create(c.Request().Context(), card); err != nil {
		switch {
		case errors.Is(err, ErrCardIDTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidCardID):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, card.AsView(h.svc.Now()))
}

func (h *Handler) List(c echo.Context) error {
	views, err := h.svc.Views(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Get(c echo.Context) error {
	return h.lookup(c)
}

// Verify serves the public QR landing lookup. It shares the exact response
// shape with Get so scanners and the dashboard see the same document.
func (h *Handler) Verify(c echo.Context) error {
	return h.lookup(c)
}

func (h *Handler) lookup(c echo.Context) error {
	card, err := h.svc.GetByCardID(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCardID):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "card not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, card.AsView(h.svc.Now()))
}

func (h *Handler) Image(c echo.Context) error {
	side := c.QueryParam("side")
	if side == "" {
		side = "front"
	}
	if side != "front" && side != "back" {
		return echo.NewHTTPError(http.StatusBadRequest, "side must be front or back")
	}

	card, err := h.svc.GetByCardID(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCardID):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "card not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	png, err := h.renderer.RenderPNG(card, side)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, h.renderer.FileName(card, side)))
	return c.Blob(http.StatusOK, "image/png", png)
}
