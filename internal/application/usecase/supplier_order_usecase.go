package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

// SupplierOrderUseCase pedidos a proveedor y recepción de stock. La
// recepción prorratea el flete del pedido entre las unidades y genera un
// lote (stock unit) por línea; esos lotes son la fuente de costo exacto del
// calculador de costos.
type SupplierOrderUseCase struct {
	orderRepo      repository.SupplierOrderRepository
	assignmentRepo repository.StockAssignmentRepository
	saleRepo       repository.SaleRepository
}

// NewSupplierOrderUseCase construye el caso de uso.
func NewSupplierOrderUseCase(
	orderRepo repository.SupplierOrderRepository,
	assignmentRepo repository.StockAssignmentRepository,
	saleRepo repository.SaleRepository,
) *SupplierOrderUseCase {
	return &SupplierOrderUseCase{
		orderRepo:      orderRepo,
		assignmentRepo: assignmentRepo,
		saleRepo:       saleRepo,
	}
}

// CreateOrder registra un pedido a proveedor con sus líneas.
func (uc *SupplierOrderUseCase) CreateOrder(ctx context.Context, in dto.CreateSupplierOrderRequest) (*dto.SupplierOrderResponse, error) {
	if in.Currency == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	order := &entity.SupplierOrder{
		ID:           uuid.New().String(),
		SupplierID:   in.SupplierID,
		Currency:     in.Currency,
		ShippingCost: in.ShippingCost,
		Date:         date,
	}
	items := make([]entity.SupplierOrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, entity.SupplierOrderItem{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			NetPrice:  it.NetPrice,
			Quantity:  it.Quantity,
		})
	}
	if err := uc.orderRepo.Create(order, items); err != nil {
		return nil, err
	}
	return toSupplierOrderResponse(order, items), nil
}

// GetOrder devuelve el pedido con sus líneas.
func (uc *SupplierOrderUseCase) GetOrder(ctx context.Context, id string) (*dto.SupplierOrderResponse, error) {
	order, items, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierOrderResponse(order, items), nil
}

// ReceiveOrder marca el pedido como recibido: genera un lote por línea con
// el flete del pedido prorrateado por unidad.
func (uc *SupplierOrderUseCase) ReceiveOrder(ctx context.Context, id string) ([]dto.StockUnitResponse, error) {
	order, items, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	totalQty := decimal.Zero
	for _, it := range items {
		totalQty = totalQty.Add(it.Quantity)
	}
	perUnitShipping := decimal.Zero
	if totalQty.IsPositive() {
		perUnitShipping = order.ShippingCost.Div(totalQty)
	}

	now := time.Now()
	out := make([]dto.StockUnitResponse, 0, len(items))
	for _, it := range items {
		unit := &entity.StockUnit{
			ID:               uuid.New().String(),
			ProductID:        it.ProductID,
			SupplierOrderID:  order.ID,
			NetPrice:         it.NetPrice,
			ShippingPrice:    perUnitShipping,
			ReceivedQuantity: it.Quantity,
			CreatedAt:        now,
		}
		if err := uc.orderRepo.CreateStockUnit(unit); err != nil {
			return nil, err
		}
		out = append(out, dto.StockUnitResponse{
			ID:               unit.ID,
			ProductID:        unit.ProductID,
			SupplierOrderID:  unit.SupplierOrderID,
			NetPrice:         unit.NetPrice,
			ShippingPrice:    unit.ShippingPrice,
			ReceivedQuantity: unit.ReceivedQuantity,
		})
	}
	return out, nil
}

// AssignStock liga una cantidad de un lote a una línea de la venta.
func (uc *SupplierOrderUseCase) AssignStock(ctx context.Context, companyID, saleID string, in dto.AssignStockRequest) (*dto.StockAssignmentResponse, error) {
	if in.SaleItemID == "" || in.StockUnitID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if _, ok := indexItems(sale.Items)[in.SaleItemID]; !ok {
		return nil, domain.ErrNotFound
	}

	assignment := &entity.StockAssignment{
		ID:          uuid.New().String(),
		SaleItemID:  in.SaleItemID,
		StockUnitID: in.StockUnitID,
		Quantity:    in.Quantity,
	}
	if err := uc.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}
	return &dto.StockAssignmentResponse{
		ID:          assignment.ID,
		SaleItemID:  assignment.SaleItemID,
		StockUnitID: assignment.StockUnitID,
		Quantity:    assignment.Quantity,
	}, nil
}

func toSupplierOrderResponse(order *entity.SupplierOrder, items []entity.SupplierOrderItem) *dto.SupplierOrderResponse {
	itemOut := make([]dto.SupplierOrderItemResponse, 0, len(items))
	for _, it := range items {
		itemOut = append(itemOut, dto.SupplierOrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			NetPrice:  it.NetPrice,
			Quantity:  it.Quantity,
		})
	}
	return &dto.SupplierOrderResponse{
		ID:           order.ID,
		SupplierID:   order.SupplierID,
		Currency:     order.Currency,
		ShippingCost: order.ShippingCost,
		Date:         order.Date.Format("2006-01-02"),
		Items:        itemOut,
	}
}
