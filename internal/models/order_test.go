package models_test

import (
	"testing"

	"vitamart/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	statuses := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusAwaitingPayment,
		models.OrderStatusPaid,
		models.OrderStatusFailed,
	}
	allowed := map[[2]models.OrderStatus]bool{
		{models.OrderStatusPending, models.OrderStatusAwaitingPayment}: true,
		{models.OrderStatusAwaitingPayment, models.OrderStatusPaid}:    true,
		{models.OrderStatusAwaitingPayment, models.OrderStatusFailed}:  true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]models.OrderStatus{from, to}], models.CanTransition(from, to), "%s -> %s", from, to)
		}
		if from.IsTerminal() {
			assert.False(t, models.CanTransition(from, models.OrderStatusPending))
		}
	}
}
