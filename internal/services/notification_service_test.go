package services_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vitamart/internal/database"
	"vitamart/internal/models"
	"vitamart/internal/repositories"
	"vitamart/internal/services"
	"vitamart/pkg/momo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationService(t *testing.T, repo repositories.OrderRepository) *services.NotificationService {
	t.Helper()
	return services.NewNotificationService(repo, newSigner(t), testPartnerCode, testAccessKey, nopLog)
}

func TestNotificationService_PaidThenDuplicate(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	seedOrder(t, repo, "O1", models.OrderStatusAwaitingPayment)
	service := newNotificationService(t, repo)
	n := signedNotification(t, "O1", "100000", "0")

	result, err := service.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.OrderStatusPaid, result.Status)
	assert.Equal(t, models.OrderStatusPaid, getStatus(t, repo, "O1"))

	result, err = service.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, models.OrderStatusPaid, result.Status)
	assert.Equal(t, models.OrderStatusPaid, getStatus(t, repo, "O1"))
}

func TestNotificationService_AuthenticDeclineFailsOrder(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	seedOrder(t, repo, "O1", models.OrderStatusAwaitingPayment)
	service := newNotificationService(t, repo)

	result, err := service.Handle(context.Background(), signedNotification(t, "O1", "100000", "1006"))
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.OrderStatusFailed, getStatus(t, repo, "O1"))

	// A later success notification cannot leave the terminal state.
	result, err = service.Handle(context.Background(), signedNotification(t, "O1", "100000", "0"))
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, models.OrderStatusFailed, getStatus(t, repo, "O1"))
}

func TestNotificationService_TamperedNeverMutates(t *testing.T) {
	for _, resultCode := range []string{"0", "1", "1006", "49"} {
		t.Run("resultCode="+resultCode, func(t *testing.T) {
			repo := repositories.NewMockOrderRepository()
			seedOrder(t, repo, "O1", models.OrderStatusAwaitingPayment)
			service := newNotificationService(t, repo)

			tampered := signedNotification(t, "O1", "100000", resultCode)
			tampered.Signature = signedNotification(t, "O1", "1", resultCode).Signature
			_, err := service.Handle(context.Background(), tampered)
			assert.ErrorIs(t, err, services.ErrInvalidNotification)

			altered := signedNotification(t, "O1", "100000", "1")
			altered.ResultCode = momo.Value(resultCode)
			if resultCode != "1" {
				_, err = service.Handle(context.Background(), altered)
				assert.ErrorIs(t, err, services.ErrInvalidNotification)
			}

			unsigned := signedNotification(t, "O1", "100000", resultCode)
			unsigned.Signature = ""
			_, err = service.Handle(context.Background(), unsigned)
			assert.ErrorIs(t, err, services.ErrInvalidNotification)

			assert.Equal(t, models.OrderStatusAwaitingPayment, getStatus(t, repo, "O1"))
		})
	}
}

func TestNotificationService_Rejections(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	seedOrder(t, repo, "pending", models.OrderStatusPending)
	seedOrder(t, repo, "awaiting", models.OrderStatusAwaitingPayment)
	service := newNotificationService(t, repo)

	_, err := service.Handle(context.Background(), signedNotification(t, "pending", "100000", "0"))
	assert.ErrorIs(t, err, services.ErrInvalidState)
	assert.Equal(t, models.OrderStatusPending, getStatus(t, repo, "pending"))

	_, err = service.Handle(context.Background(), signedNotification(t, "ghost", "100000", "0"))
	assert.ErrorIs(t, err, services.ErrUnknownOrder)

	_, err = service.Handle(context.Background(), signedNotification(t, "awaiting", "99999", "0"))
	assert.ErrorIs(t, err, services.ErrInvalidNotification)
	assert.Equal(t, models.OrderStatusAwaitingPayment, getStatus(t, repo, "awaiting"))

	foreign := services.NewNotificationService(repo, newSigner(t), "OTHER", testAccessKey, nopLog)
	_, err = foreign.Handle(context.Background(), signedNotification(t, "awaiting", "100000", "0"))
	assert.ErrorIs(t, err, services.ErrInvalidNotification)
	assert.Equal(t, models.OrderStatusAwaitingPayment, getStatus(t, repo, "awaiting"))
}

// deliverConcurrently hands the same notification to Handle from many
// goroutines and checks every delivery was acknowledged with exactly one
// applied transition.
func deliverConcurrently(t *testing.T, repo repositories.OrderRepository, deliveries int) {
	t.Helper()
	service := newNotificationService(t, repo)
	n := signedNotification(t, "O1", "100000", "0")

	results := make([]*services.NotificationResult, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.Handle(context.Background(), n)
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := 0; i < deliveries; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, models.OrderStatusPaid, results[i].Status)
		if results[i].Applied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, models.OrderStatusPaid, getStatus(t, repo, "O1"))
}

func TestNotificationService_ConcurrentDuplicates(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	seedOrder(t, repo, "O1", models.OrderStatusAwaitingPayment)
	deliverConcurrently(t, repo, 50)
}

func TestNotificationService_ConcurrentDuplicatesOnSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "vitamart.db") + "?_busy_timeout=5000"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repositories.NewGORMOrderRepository(db)
	seedOrder(t, repo, "O1", models.OrderStatusAwaitingPayment)
	deliverConcurrently(t, repo, 50)
}

func TestNotificationService_ScenarioWithInitiation(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	seedOrder(t, repo, "O1", models.OrderStatusPending)
	gateway := new(MockPaymentGateway)
	gateway.On("CreatePayment", mock.Anything, momoAny()).
		Return(&momo.CreatePaymentResponse{ResultCode: 0, PayURL: "https://pay.example/O1"}, nil).Once()

	payments := newPaymentService(t, repo, gateway)
	notifications := newNotificationService(t, repo)

	result, err := payments.Initiate(context.Background(), services.InitiatePaymentRequest{OrderID: "O1", UserID: "U1", Total: 100000})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PayURL)
	assert.Equal(t, models.OrderStatusAwaitingPayment, getStatus(t, repo, "O1"))

	forged := signedNotification(t, "O1", "100000", "0")
	forged.Signature = momo.Value(strings.Repeat("0", 64))
	_, err = notifications.Handle(context.Background(), forged)
	assert.ErrorIs(t, err, services.ErrInvalidNotification)
	assert.Equal(t, models.OrderStatusAwaitingPayment, getStatus(t, repo, "O1"))

	n := signedNotification(t, "O1", "100000", "0")
	_, err = notifications.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, getStatus(t, repo, "O1"))

	_, err = notifications.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, getStatus(t, repo, "O1"))
}
