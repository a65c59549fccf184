package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"vitamart/internal/models"
	"vitamart/internal/repositories"
	"vitamart/internal/signature"
	"vitamart/pkg/momo"

	"go.uber.org/zap"
)

// NotificationResult reports how a notification was applied.
type NotificationResult struct {
	OrderID string
	Status  models.OrderStatus
	// Applied is false when the order was already settled and the
	// notification was acknowledged without a write.
	Applied bool
}

// NotificationService reconciles gateway payment notifications with orders.
type NotificationService struct {
	orderRepo   repositories.OrderRepository
	signer      *signature.Signer
	partnerCode string
	accessKey   string
	log         *zap.SugaredLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(orderRepo repositories.OrderRepository, signer *signature.Signer, partnerCode, accessKey string, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{
		orderRepo:   orderRepo,
		signer:      signer,
		partnerCode: partnerCode,
		accessKey:   accessKey,
		log:         log,
	}
}

// Handle authenticates a notification and settles the order it names.
//
// resultCode "0" moves the order from AwaitingPayment to Paid; any other
// resultCode moves it to Failed. A notification for an order that is
// already Paid or Failed is a redelivery and succeeds without writing. The
// status change is a single compare-and-swap, so concurrent duplicates
// produce exactly one transition.
func (s *NotificationService) Handle(ctx context.Context, n momo.Notification) (*NotificationResult, error) {
	orderID := n.OrderID.String()

	if err := s.authenticate(n); err != nil {
		s.log.Warnw("rejected payment notification, possible forgery",
			"orderId", orderID, "requestId", n.RequestID.String(), "transId", n.TransID.String(), "reason", err)
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Warnw("payment notification for unknown order", "orderId", orderID, "transId", n.TransID.String())
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
		}
		return nil, storeError("get order", err)
	}

	amount, err := strconv.ParseInt(n.Amount.String(), 10, 64)
	if err != nil || amount != order.Total {
		s.log.Warnw("payment notification amount mismatch", "orderId", orderID, "amount", n.Amount.String(), "total", order.Total)
		return nil, fmt.Errorf("%w: amount %s does not match order total %d", ErrInvalidNotification, n.Amount, order.Total)
	}

	target := models.OrderStatusPaid
	if !n.Succeeded() {
		target = models.OrderStatusFailed
	}

	return s.settle(order, target, n)
}

func (s *NotificationService) authenticate(n momo.Notification) error {
	ok, err := s.signer.VerifyValues(signature.PaymentNotifyV2, n.SignedValues(s.accessKey), n.Signature.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if !ok {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidNotification)
	}
	if n.PartnerCode.String() != s.partnerCode {
		return fmt.Errorf("%w: unexpected partnerCode %q", ErrInvalidNotification, n.PartnerCode)
	}
	return nil
}

func (s *NotificationService) settle(order *models.Order, target models.OrderStatus, n momo.Notification) (*NotificationResult, error) {
	switch {
	case order.Status.IsTerminal():
		return s.duplicate(order, n), nil
	case order.Status == models.OrderStatusPending:
		return nil, fmt.Errorf("%w: order %s has no payment session", ErrInvalidState, order.ID)
	}

	swapped, err := s.orderRepo.CompareAndSwapStatus(order.ID, models.OrderStatusAwaitingPayment, target)
	if err != nil {
		return nil, storeError("update order status", err)
	}
	if !swapped {
		// Lost the race; see what won.
		current, err := s.orderRepo.GetByID(order.ID)
		if err != nil {
			return nil, storeError("get order", err)
		}
		if current.Status.IsTerminal() {
			return s.duplicate(current, n), nil
		}
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, order.ID, current.Status)
	}

	s.log.Infow("order settled", "orderId", order.ID, "status", target,
		"transId", n.TransID.String(), "resultCode", n.ResultCode.String(), "message", n.Message.String())
	return &NotificationResult{OrderID: order.ID, Status: target, Applied: true}, nil
}

func (s *NotificationService) duplicate(order *models.Order, n momo.Notification) *NotificationResult {
	s.log.Infow("duplicate payment notification acknowledged", "orderId", order.ID, "status", order.Status,
		"transId", n.TransID.String())
	return &NotificationResult{OrderID: order.ID, Status: order.Status, Applied: false}
}
