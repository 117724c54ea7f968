package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/ventas-pro/internal/application/auth"
	"github.com/jhoicas/ventas-pro/internal/application/usecase"
	infrapdf "github.com/jhoicas/ventas-pro/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-pro/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-pro/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/ventas-pro/internal/interfaces/http"
	"github.com/jhoicas/ventas-pro/pkg/config"
	"github.com/jhoicas/ventas-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	assignmentRepo := postgres.NewStockAssignmentRepository(pool)
	supplierPriceRepo := postgres.NewSupplierPriceRepository(pool)
	supplierOrderRepo := postgres.NewSupplierOrderRepository(pool)
	rateRepo := postgres.NewExchangeRateRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	saleUC := usecase.NewSaleUseCase(
		saleRepo, assignmentRepo, productRepo, supplierPriceRepo, invoiceRepo, rateRepo,
	)
	invoiceUC := usecase.NewInvoiceUseCase(saleRepo, invoiceRepo, txRunner)
	supplierUC := usecase.NewSupplierOrderUseCase(supplierOrderRepo, assignmentRepo, saleRepo)
	rateUC := usecase.NewExchangeRateUseCase(rateRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	xmlExporter := ubl.NewExporter()
	documentUC := usecase.NewDocumentUseCase(
		saleRepo, companyRepo, customerRepo, pdfGenerator, xmlExporter,
	)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:  companyUC,
		ProductUC:  productUC,
		CustomerUC: customerUC,
		SaleUC:     saleUC,
		DocumentUC: documentUC,
		InvoiceUC:  invoiceUC,
		SupplierUC: supplierUC,
		RateUC:     rateUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
