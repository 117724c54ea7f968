package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/application/usecase"
	"github.com/jhoicas/ventas-pro/internal/domain"
)

// ExchangeRateHandler registro y consulta de tasas de cambio (protegido).
type ExchangeRateHandler struct {
	uc *usecase.ExchangeRateUseCase
}

// NewExchangeRateHandler construye el handler.
func NewExchangeRateHandler(uc *usecase.ExchangeRateUseCase) *ExchangeRateHandler {
	return &ExchangeRateHandler{uc: uc}
}

// Save registra una tasa de cambio.
// PUT /api/exchange-rates
func (h *ExchangeRateHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveExchangeRateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Save(in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "base, quote y rate positiva son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Latest devuelve la tasa más reciente del par.
// GET /api/exchange-rates?base=EUR&quote=COP
func (h *ExchangeRateHandler) Latest(c *fiber.Ctx) error {
	out, err := h.uc.Latest(c.Query("base"), c.Query("quote"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "base y quote son requeridos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay tasa registrada para el par"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
