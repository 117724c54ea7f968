package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/application/usecase"
	"github.com/jhoicas/ventas-pro/internal/domain"
)

// SupplierOrderHandler pedidos a proveedor, recepción de lotes y asignación
// de stock a ventas (protegido).
type SupplierOrderHandler struct {
	uc *usecase.SupplierOrderUseCase
}

// NewSupplierOrderHandler construye el handler.
func NewSupplierOrderHandler(uc *usecase.SupplierOrderUseCase) *SupplierOrderHandler {
	return &SupplierOrderHandler{uc: uc}
}

// Create registra un pedido a proveedor.
// POST /api/supplier-orders
func (h *SupplierOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplierOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateOrder(c.Context(), in)
	if err != nil {
		return supplierOrderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve el pedido con sus líneas.
// GET /api/supplier-orders/:id
func (h *SupplierOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return supplierOrderError(c, err)
	}
	return c.JSON(out)
}

// Receive genera los lotes de stock del pedido con el flete prorrateado.
// POST /api/supplier-orders/:id/receive
func (h *SupplierOrderHandler) Receive(c *fiber.Ctx) error {
	units, err := h.uc.ReceiveOrder(c.Context(), c.Params("id"))
	if err != nil {
		return supplierOrderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(units)
}

// AssignStock liga una cantidad de un lote a una línea de la venta.
// POST /api/sales/:id/stock-assignments
func (h *SupplierOrderHandler) AssignStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AssignStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AssignStock(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return supplierOrderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func supplierOrderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
