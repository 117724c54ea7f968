package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ventas-pro/internal/application/auth"
	"github.com/jhoicas/ventas-pro/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC  *usecase.CompanyUseCase
	ProductUC  *usecase.ProductUseCase
	CustomerUC *usecase.CustomerUseCase
	SaleUC     *usecase.SaleUseCase
	DocumentUC *usecase.DocumentUseCase
	InvoiceUC  *usecase.InvoiceUseCase
	SupplierUC *usecase.SupplierOrderUseCase
	RateUC     *usecase.ExchangeRateUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)

	// Sales (protegido): cotización, persistencia, montos, margen y documentos
	saleHandler := NewSaleHandler(deps.SaleUC, deps.DocumentUC)
	protected.Post("/quotes/calculate", saleHandler.CalculateQuote)

	sales := protected.Group("/sales")
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/amounts", saleHandler.GetAmounts)
	sales.Get("/:id/margin", saleHandler.GetMargin)
	sales.Patch("/:id/status", saleHandler.UpdateStatus)
	sales.Get("/:id/document.pdf", saleHandler.DownloadPDF)
	sales.Get("/:id/document.xml", saleHandler.DownloadXML)

	// Invoices (protegido): emisión parcial y notas crédito.
	// Emitir documentos fiscales queda restringido a admin y contable.
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	emisores := RequireRoles("admin", "contable")
	sales.Post("/:id/invoices", emisores, invoiceHandler.EmitInvoice)
	sales.Get("/:id/invoices", invoiceHandler.ListBySale)
	sales.Post("/:id/credit-notes", emisores, invoiceHandler.EmitCreditNote)
	protected.Get("/invoices/:id", invoiceHandler.GetByID)

	// Supplier orders y stock (protegido)
	supplierHandler := NewSupplierOrderHandler(deps.SupplierUC)
	orders := protected.Group("/supplier-orders")
	orders.Post("/", supplierHandler.Create)
	orders.Get("/:id", supplierHandler.GetByID)
	orders.Post("/:id/receive", supplierHandler.Receive)
	sales.Post("/:id/stock-assignments", supplierHandler.AssignStock)

	// Exchange rates (protegido). Solo admin y contable pueden fijar tasas.
	rateHandler := NewExchangeRateHandler(deps.RateUC)
	protected.Put("/exchange-rates", RequireRoles("admin", "contable"), rateHandler.Save)
	protected.Get("/exchange-rates", rateHandler.Latest)
}
