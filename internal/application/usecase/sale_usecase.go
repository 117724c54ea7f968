package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
	"github.com/jhoicas/ventas-pro/pkg/money"
)

// SaleUseCase casos de uso de ventas: cotización efímera, creación y
// consulta de montos y márgenes. Cada cálculo usa calculadores nuevos: la
// memoización no sobrevive entre peticiones.
type SaleUseCase struct {
	saleRepo    repository.SaleRepository
	assignments pricing.StockAssignmentProvider
	resolver    pricing.SubjectResolver
	guesser     pricing.PurchaseCostGuesser
	invoices    pricing.InvoiceQuantityCalculator
	converter   pricing.CurrencyConverter
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	saleRepo repository.SaleRepository,
	assignments pricing.StockAssignmentProvider,
	resolver pricing.SubjectResolver,
	guesser pricing.PurchaseCostGuesser,
	invoices pricing.InvoiceQuantityCalculator,
	converter pricing.CurrencyConverter,
) *SaleUseCase {
	return &SaleUseCase{
		saleRepo:    saleRepo,
		assignments: assignments,
		resolver:    resolver,
		guesser:     guesser,
		invoices:    invoices,
		converter:   converter,
	}
}

// CalculateQuote calcula los montos de una venta efímera sin persistirla.
func (uc *SaleUseCase) CalculateQuote(ctx context.Context, in dto.CalculateQuoteRequest) (*dto.SaleAmountsResponse, error) {
	if in.Currency == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	sale := &entity.Sale{
		Currency:    in.Currency,
		Items:       toItemEntities(in.Items),
		Adjustments: toAdjustmentEntities(in.Adjustments),
		Shipment:    toShipmentEntity(in.Shipment),
	}
	amounts, err := pricing.NewAmountCalculator().CalculateSale(sale)
	if err != nil {
		return nil, err
	}
	return toSaleAmountsResponse(amounts), nil
}

// CreateSale valida el árbol (corriendo el cálculo) y persiste la venta como
// cotización.
func (uc *SaleUseCase) CreateSale(ctx context.Context, companyID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.CustomerID == "" || in.Currency == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	sale := &entity.Sale{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		CustomerID:  in.CustomerID,
		Number:      in.Number,
		Status:      entity.SaleStatusQuote,
		Currency:    in.Currency,
		Date:        date,
		Items:       toItemEntities(in.Items),
		Adjustments: toAdjustmentEntities(in.Adjustments),
		Shipment:    toShipmentEntity(in.Shipment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Un árbol que no calcula no se persiste.
	if _, err := pricing.NewAmountCalculator().CalculateSale(sale); err != nil {
		return nil, err
	}
	if err := uc.saleRepo.Create(sale); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetSale devuelve la venta con su árbol.
func (uc *SaleUseCase) GetSale(ctx context.Context, companyID, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetSaleAmounts calcula los montos de una venta persistida.
func (uc *SaleUseCase) GetSaleAmounts(ctx context.Context, companyID, saleID string) (*dto.SaleAmountsResponse, error) {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return nil, err
	}
	amounts, err := pricing.NewAmountCalculator().CalculateSale(sale)
	if err != nil {
		return nil, err
	}
	return toSaleAmountsResponse(amounts), nil
}

// GetSaleMargin calcula el margen de la venta, opcionalmente expresado en
// otra moneda. En ventas facturadas los montos se restringen a las
// cantidades realmente facturadas menos las acreditadas.
func (uc *SaleUseCase) GetSaleMargin(ctx context.Context, companyID, saleID, currency string) (*dto.MarginResponse, error) {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return nil, err
	}

	var invoices pricing.InvoiceQuantityCalculator
	if sale.Status == entity.SaleStatusInvoiced {
		invoices = uc.invoices
	}
	amounts := pricing.NewAmountCalculator()
	costs := pricing.NewCostCalculator(uc.assignments, uc.resolver, uc.guesser)
	calc := pricing.NewMarginCalculator(amounts, costs, invoices, uc.converter)

	margin, err := calc.CalculateSale(sale)
	if err != nil {
		return nil, err
	}

	out := sale.Currency
	if currency != "" && currency != sale.Currency {
		margin, err = calc.ConvertMargin(margin, sale.Currency, currency)
		if err != nil {
			return nil, err
		}
		out = currency
	}
	return &dto.MarginResponse{
		Currency: out,
		Amount:   money.Round(margin.Amount, out),
		Percent:  margin.Percent,
		Average:  margin.Average,
	}, nil
}

// UpdateSaleStatus cambia el estado con transiciones válidas:
// quote->accepted->invoiced; cualquier estado no facturado puede cancelarse.
func (uc *SaleUseCase) UpdateSaleStatus(ctx context.Context, companyID, saleID, status string) error {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return err
	}
	if !validTransition(sale.Status, status) {
		return domain.ErrConflict
	}
	return uc.saleRepo.UpdateStatus(saleID, status)
}

func validTransition(from, to string) bool {
	switch to {
	case entity.SaleStatusAccepted:
		return from == entity.SaleStatusQuote
	case entity.SaleStatusInvoiced:
		return from == entity.SaleStatusAccepted
	case entity.SaleStatusCancelled:
		return from != entity.SaleStatusInvoiced
	default:
		return false
	}
}

func (uc *SaleUseCase) loadSale(companyID, saleID string) (*entity.Sale, error) {
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
	return sale, nil
}

// ── conversión DTO <-> entidad ────────────────────────────────────────────────

func toItemEntities(items []dto.SaleItemRequest) []*entity.SaleItem {
	out := make([]*entity.SaleItem, 0, len(items))
	for i, in := range items {
		item := &entity.SaleItem{
			ID:            uuid.New().String(),
			ProductID:     in.ProductID,
			Designation:   in.Designation,
			UnitPrice:     in.UnitPrice,
			Quantity:      in.Quantity,
			DiscountRates: in.DiscountRates,
			TaxRates:      in.TaxRates,
			TaxGroupID:    in.TaxGroupID,
			Private:       in.Private,
			Compound:      in.Compound,
			Position:      i,
			Children:      toItemEntities(in.Children),
		}
		out = append(out, item)
	}
	return out
}

func toAdjustmentEntities(adjs []dto.SaleAdjustmentRequest) []entity.SaleAdjustment {
	out := make([]entity.SaleAdjustment, 0, len(adjs))
	for i, in := range adjs {
		out = append(out, entity.SaleAdjustment{
			Designation: in.Designation,
			Type:        entity.AdjustmentType(in.Type),
			Mode:        entity.AdjustmentMode(in.Mode),
			Amount:      in.Amount,
			Position:    i,
		})
	}
	return out
}

func toShipmentEntity(in *dto.ShipmentRequest) *entity.Shipment {
	if in == nil {
		return nil
	}
	return &entity.Shipment{
		Designation: in.Designation,
		Amount:      in.Amount,
		Cost:        in.Cost,
		TaxRates:    in.TaxRates,
	}
}

func toAdjustmentResponses(adjs []pricing.Adjustment) []dto.AdjustmentResponse {
	if len(adjs) == 0 {
		return nil
	}
	out := make([]dto.AdjustmentResponse, 0, len(adjs))
	for _, a := range adjs {
		out = append(out, dto.AdjustmentResponse{Name: a.Name, Amount: a.Amount, Rate: a.Rate})
	}
	return out
}

func toAmountResponse(a pricing.Amount) dto.AmountResponse {
	return dto.AmountResponse{
		Currency:  a.Currency,
		Unit:      a.Unit,
		Gross:     a.Gross,
		Discount:  a.Discount,
		Base:      a.Base,
		Tax:       a.Tax,
		Total:     a.Total,
		Discounts: toAdjustmentResponses(a.Discounts),
		Taxes:     toAdjustmentResponses(a.Taxes),
	}
}

func toSaleAmountsResponse(amounts *pricing.SaleAmounts) *dto.SaleAmountsResponse {
	items := make(map[string]dto.AmountResponse, len(amounts.Items))
	for id, a := range amounts.Items {
		items[id] = toAmountResponse(a)
	}
	return &dto.SaleAmountsResponse{
		Gross:    toAmountResponse(amounts.Gross),
		Final:    toAmountResponse(amounts.Final),
		Shipment: toAmountResponse(amounts.Shipment),
		Items:    items,
	}
}

func toItemResponses(items []*entity.SaleItem) []dto.SaleItemResponse {
	out := make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SaleItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Designation:   it.Designation,
			UnitPrice:     it.UnitPrice,
			Quantity:      it.Quantity,
			DiscountRates: it.DiscountRates,
			TaxRates:      it.TaxRates,
			TaxGroupID:    it.TaxGroupID,
			Private:       it.Private,
			Compound:      it.Compound,
			Children:      toItemResponses(it.Children),
		})
	}
	return out
}

func toSaleResponse(sale *entity.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:         sale.ID,
		CompanyID:  sale.CompanyID,
		CustomerID: sale.CustomerID,
		Number:     sale.Number,
		Status:     sale.Status,
		Currency:   sale.Currency,
		Date:       sale.Date.Format("2006-01-02"),
		Items:      toItemResponses(sale.Items),
		CreatedAt:  sale.CreatedAt,
		UpdatedAt:  sale.UpdatedAt,
	}
}
