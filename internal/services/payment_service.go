package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitamart/internal/models"
	"vitamart/internal/repositories"
	"vitamart/internal/signature"
	"vitamart/pkg/momo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway creates payment sessions at the wallet gateway.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req momo.CreatePaymentRequest) (*momo.CreatePaymentResponse, error)
}

// PaymentConfig holds the merchant identity and callback URLs sent with
// every payment request.
type PaymentConfig struct {
	PartnerCode string
	AccessKey   string
	ReturnURL   string
	NotifyURL   string
	RequestType string
}

// InitiatePaymentRequest is the input of Initiate.
type InitiatePaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Total   int64  `json:"total" validate:"required,gt=0"`
}

// InitiatePaymentResult is returned by a successful Initiate.
type InitiatePaymentResult struct {
	PayURL    string `json:"payUrl"`
	RequestID string `json:"-"`
}

// PaymentService opens payment sessions for orders.
type PaymentService struct {
	orderRepo    repositories.OrderRepository
	gateway      PaymentGateway
	signer       *signature.Signer
	cfg          PaymentConfig
	publisher    EventPublisher
	log          *zap.SugaredLogger
	newRequestID func() string
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(orderRepo repositories.OrderRepository, gateway PaymentGateway, signer *signature.Signer, cfg PaymentConfig, publisher EventPublisher, log *zap.SugaredLogger) *PaymentService {
	if cfg.RequestType == "" {
		cfg.RequestType = momo.DefaultRequestType
	}
	return &PaymentService{
		orderRepo:    orderRepo,
		gateway:      gateway,
		signer:       signer,
		cfg:          cfg,
		publisher:    publisher,
		log:          log,
		newRequestID: func() string { return uuid.New().String() },
	}
}

// OrderInfo is the description shown to the payer.
func OrderInfo(orderID string) string {
	return fmt.Sprintf("Thanh toán đơn hàng #%s từ VitaMart", orderID)
}

// Initiate signs a create-payment request for the order, sends it to the
// gateway and, on success, moves the order from Pending to AwaitingPayment
// and stores the returned pay URL. An order that is already AwaitingPayment
// may be initiated again; every attempt uses a fresh requestId. Nothing is
// retried here.
func (s *PaymentService) Initiate(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error) {
	if req.OrderID == "" || req.UserID == "" {
		return nil, invalidRequest("orderId, userId and total are required")
	}
	if req.Total <= 0 {
		return nil, invalidRequest("total must be positive")
	}

	order, err := s.orderRepo.GetByID(req.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, req.OrderID)
		}
		return nil, storeError("get order", err)
	}
	if order.UserID != req.UserID {
		return nil, invalidRequest("order %s does not belong to user %s", req.OrderID, req.UserID)
	}
	if order.Total != req.Total {
		return nil, invalidRequest("total %d does not match order total %d", req.Total, order.Total)
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusAwaitingPayment {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, order.ID, order.Status)
	}

	gwReq := momo.CreatePaymentRequest{
		PartnerCode: s.cfg.PartnerCode,
		AccessKey:   s.cfg.AccessKey,
		RequestID:   s.newRequestID(),
		Amount:      order.Total,
		OrderID:     order.ID,
		OrderInfo:   OrderInfo(order.ID),
		ReturnURL:   s.cfg.ReturnURL,
		NotifyURL:   s.cfg.NotifyURL,
		ExtraData:   "",
		RequestType: s.cfg.RequestType,
	}
	gwReq.Signature, err = s.signer.SignValues(signature.CreatePaymentV2, gwReq.SignedValues())
	if err != nil {
		return nil, fmt.Errorf("failed to sign payment request: %w", err)
	}

	resp, err := s.gateway.CreatePayment(ctx, gwReq)
	if err != nil {
		s.log.Errorw("payment gateway call failed", "orderId", order.ID, "requestId", gwReq.RequestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	if resp.ResultCode != momo.ResultSuccess {
		s.log.Warnw("payment gateway rejected request", "orderId", order.ID, "requestId", gwReq.RequestID,
			"resultCode", resp.ResultCode, "message", resp.Message)
		return nil, &GatewayRejectedError{ResultCode: resp.ResultCode, Message: resp.Message}
	}
	if resp.PayURL == "" {
		return nil, fmt.Errorf("%w: response for order %s has no payUrl", ErrGatewayUnreachable, order.ID)
	}

	if err := s.awaitPayment(order.ID); err != nil {
		return nil, err
	}
	stored, err := s.orderRepo.SetPaymentURL(order.ID, resp.PayURL)
	if err != nil {
		return nil, storeError("set payment url", err)
	}
	if !stored {
		return nil, fmt.Errorf("%w: order %s settled while the payment session was opening", ErrInvalidState, order.ID)
	}

	s.log.Infow("payment session opened", "orderId", order.ID, "requestId", gwReq.RequestID)
	publishEvent(s.publisher, s.log, EventOrderPaymentRequested, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(models.OrderStatusAwaitingPayment),
		Total:      order.Total,
		RequestID:  gwReq.RequestID,
		OccurredAt: time.Now(),
	})

	return &InitiatePaymentResult{PayURL: resp.PayURL, RequestID: gwReq.RequestID}, nil
}

// awaitPayment moves the order to AwaitingPayment. Finding it there already
// is fine; any other status means it settled while the gateway call was in
// flight.
func (s *PaymentService) awaitPayment(orderID string) error {
	swapped, err := s.orderRepo.CompareAndSwapStatus(orderID, models.OrderStatusPending, models.OrderStatusAwaitingPayment)
	if err != nil {
		return storeError("update order status", err)
	}
	if swapped {
		return nil
	}
	current, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return storeError("get order", err)
	}
	if current.Status != models.OrderStatusAwaitingPayment {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderID, current.Status)
	}
	return nil
}
