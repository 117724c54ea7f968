package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

// SalePDFGenerator genera la representación gráfica (PDF) de una venta con
// su desglose de montos.
type SalePDFGenerator interface {
	GenerateSalePDF(ctx context.Context, sale *entity.Sale, company *entity.Company,
		customer *entity.Customer, amounts *pricing.SaleAmounts) ([]byte, error)
}

// SaleXMLExporter exporta la venta calculada como documento XML UBL.
type SaleXMLExporter interface {
	ExportSaleXML(sale *entity.Sale, company *entity.Company,
		customer *entity.Customer, amounts *pricing.SaleAmounts) ([]byte, error)
}

// DocumentUseCase genera los documentos descargables de una venta (PDF y
// XML) a partir del resultado del motor de cálculo.
type DocumentUseCase struct {
	saleRepo     repository.SaleRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	pdf          SalePDFGenerator
	xml          SaleXMLExporter
}

// NewDocumentUseCase construye el caso de uso inyectando sus dependencias.
func NewDocumentUseCase(
	saleRepo repository.SaleRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	pdf SalePDFGenerator,
	xml SaleXMLExporter,
) *DocumentUseCase {
	return &DocumentUseCase{
		saleRepo:     saleRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		pdf:          pdf,
		xml:          xml,
	}
}

// DownloadSalePDF carga la venta, calcula sus montos y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe.
//   - domain.ErrForbidden        si la venta no pertenece a la empresa del token.
func (uc *DocumentUseCase) DownloadSalePDF(ctx context.Context, companyID, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, company, customer, amounts, err := uc.loadContext(companyID, saleID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.pdf.GenerateSalePDF(ctx, sale, company, customer, amounts)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta_%s.pdf", documentNumber(sale)), nil
}

// DownloadSaleXML carga la venta, calcula sus montos y exporta el XML UBL.
func (uc *DocumentUseCase) DownloadSaleXML(ctx context.Context, companyID, saleID string) (xmlBytes []byte, filename string, err error) {
	sale, company, customer, amounts, err := uc.loadContext(companyID, saleID)
	if err != nil {
		return nil, "", err
	}
	xmlBytes, err = uc.xml.ExportSaleXML(sale, company, customer, amounts)
	if err != nil {
		return nil, "", fmt.Errorf("xml: exportación fallida: %w", err)
	}
	return xmlBytes, fmt.Sprintf("venta_%s.xml", documentNumber(sale)), nil
}

func (uc *DocumentUseCase) loadContext(companyID, saleID string) (*entity.Sale, *entity.Company, *entity.Customer, *pricing.SaleAmounts, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("documento: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, nil, nil, nil, domain.ErrForbidden
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, nil, nil, nil, fmt.Errorf("documento: obtener empresa: %w", domain.ErrNotFound)
	}
	customer, err := uc.customerRepo.GetByID(sale.CustomerID)
	if err != nil || customer == nil {
		return nil, nil, nil, nil, fmt.Errorf("documento: obtener cliente: %w", domain.ErrNotFound)
	}

	amounts, err := pricing.NewAmountCalculator().CalculateSale(sale)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return sale, company, customer, amounts, nil
}

func documentNumber(sale *entity.Sale) string {
	if sale.Number != "" {
		return sale.Number
	}
	return sale.ID
}
