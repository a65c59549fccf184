package handlers

import (
	"vitamart/internal/services"
	"vitamart/pkg/momo"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler handles payment creation and gateway notifications.
type PaymentHandler struct {
	payments      *services.PaymentService
	notifications *services.NotificationService
	validate      *validator.Validate
	log           *zap.SugaredLogger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService, notifications *services.NotificationService, log *zap.SugaredLogger) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		notifications: notifications,
		validate:      validator.New(),
		log:           log,
	}
}

// RegisterRoutes registers the payment routes. Both are public: the notify
// route is authenticated by signature only.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create-payment", h.HandleCreatePayment)
	router.Post("/payment-notify", h.HandlePaymentNotify)
}

// HandleCreatePayment opens a payment session and returns the pay URL.
func (h *PaymentHandler) HandleCreatePayment(c *fiber.Ctx) error {
	var req services.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required fields",
		})
	}

	result, err := h.payments.Initiate(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}

// HandlePaymentNotify applies a gateway notification. Accepted and
// duplicate notifications are answered 200 so the gateway stops retrying.
func (h *PaymentHandler) HandlePaymentNotify(c *fiber.Ctx) error {
	var n momo.Notification
	if err := c.BodyParser(&n); err != nil {
		h.log.Warnw("unreadable payment notification", "ip", c.IP(), "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid"})
	}

	result, err := h.notifications.Handle(c.UserContext(), n)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "confirmed",
		"orderId": result.OrderID,
		"status":  result.Status,
	})
}
