package services_test

import (
	"context"
	"testing"

	"vitamart/internal/models"
	"vitamart/internal/repositories"
	"vitamart/internal/services"
	"vitamart/internal/signature"
	"vitamart/pkg/momo"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPartnerCode = "MOMO"
	testAccessKey   = "F8BBA842ECF85"
	testSecretKey   = "K951B6PE1waDMi640xX08PD3vg6EkVlz"
)

var nopLog = zap.NewNop().Sugar()

// MockPaymentGateway is a mock implementation of services.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req momo.CreatePaymentRequest) (*momo.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*momo.CreatePaymentResponse), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func newSigner(t *testing.T) *signature.Signer {
	t.Helper()
	signer, err := signature.NewSigner(testSecretKey)
	require.NoError(t, err)
	return signer
}

// seedOrder stores an order for U1 with total 100000 in the given status.
func seedOrder(t *testing.T, repo repositories.OrderRepository, id string, status models.OrderStatus) {
	t.Helper()
	require.NoError(t, repo.Create(&models.Order{
		ID:     id,
		UserID: "U1",
		Items:  []models.OrderItem{{ProductID: "p1", Name: "Vitamin C", Quantity: 2, UnitPrice: 50000}},
		Total:  100000,
		Status: status,
	}))
}

// signedNotification builds a notification for orderID signed with the test key.
func signedNotification(t *testing.T, orderID, amount, resultCode string) momo.Notification {
	t.Helper()
	n := momo.Notification{
		PartnerCode:  testPartnerCode,
		OrderID:      momo.Value(orderID),
		RequestID:    "R-" + momo.Value(orderID),
		Amount:       momo.Value(amount),
		OrderInfo:    momo.Value(services.OrderInfo(orderID)),
		OrderType:    "momo_wallet",
		TransID:      "2547774574",
		ResultCode:   momo.Value(resultCode),
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: "1700000000000",
		ExtraData:    "",
	}
	sig, err := newSigner(t).SignValues(signature.PaymentNotifyV2, n.SignedValues(testAccessKey))
	require.NoError(t, err)
	n.Signature = momo.Value(sig)
	return n
}

func getStatus(t *testing.T, repo repositories.OrderRepository, id string) models.OrderStatus {
	t.Helper()
	order, err := repo.GetByID(id)
	require.NoError(t, err)
	return order.Status
}

func momoAny() interface{} {
	return mock.AnythingOfType("momo.CreatePaymentRequest")
}
