package main

import (
	"context"
	"fmt"
	"time"

	"vitamart/internal/config"
	"vitamart/internal/handlers"
	"vitamart/internal/middleware"
	"vitamart/internal/repositories"
	"vitamart/internal/services"
	"vitamart/internal/signature"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the external resources the app is built on.
type Dependencies struct {
	DB        *gorm.DB
	Gateway   services.PaymentGateway
	Publisher services.EventPublisher // optional
	Log       *zap.SugaredLogger
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(cfg *config.Config, deps Dependencies) (*fiber.App, error) {
	signer, err := signature.NewSigner(cfg.MoMo.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)

	// --- Services ---
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, deps.Publisher, deps.Log)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	paymentService := services.NewPaymentService(orderRepo, deps.Gateway, signer, services.PaymentConfig{
		PartnerCode: cfg.MoMo.PartnerCode,
		AccessKey:   cfg.MoMo.AccessKey,
		ReturnURL:   cfg.MoMo.ReturnURL,
		NotifyURL:   cfg.MoMo.NotifyURL,
		RequestType: cfg.MoMo.RequestType,
	}, deps.Publisher, deps.Log)
	notificationService := services.NewNotificationService(orderRepo, signer, cfg.MoMo.PartnerCode, cfg.MoMo.AccessKey, deps.Log)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, deps.Log)
	productHandler := handlers.NewProductHandler(productService, deps.Log)
	orderHandler := handlers.NewOrderHandler(orderService, deps.Log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, notificationService, deps.Log)

	app := fiber.New(fiber.Config{
		AppName:               "vitamart",
		DisableStartupMessage: true,
	})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := pingDB(c.UserContext(), deps.DB); err != nil {
			deps.Log.Warnw("health check failed", "error", err)
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"broker": deps.Publisher != nil,
		})
	})

	api := app.Group("/api")

	// Public routes come first; the authenticated group below applies to
	// every /api route registered after it.
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	paymentHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService, deps.Log))
	productHandler.RegisterAdminRoutes(protected)
	orderHandler.RegisterAdminRoutes(protected)

	return app, nil
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
