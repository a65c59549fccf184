package services

import (
	"errors"
	"fmt"
	"time"

	"vitamart/internal/models"
	"vitamart/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the input of CreateOrder. Total is optional; when
// set it must equal the total computed from the catalog.
type CreateOrderRequest struct {
	UserID string             `json:"userId" validate:"required"`
	Items  []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total  int64              `json:"total" validate:"gte=0"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
	log         *zap.SugaredLogger
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, log *zap.SugaredLogger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		log:         log,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

// GetOrdersByUser retrieves the orders placed by a user.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, invalidRequest("userId is required")
	}
	orders, err := s.orderRepo.GetByUserID(userID)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
		}
		return nil, storeError("get order", err)
	}
	return order, nil
}

// CreateOrder creates a new Pending order. Names and unit prices are taken
// from the catalog at the time of the order.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if req.UserID == "" || len(req.Items) == 0 {
		return nil, invalidRequest("userId and at least one item are required")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, invalidRequest("quantity for product %s must be positive", item.ProductID)
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, invalidRequest("product %s not found", item.ProductID)
			}
			return nil, storeError("get product", err)
		}
		if product.Stock < item.Quantity {
			return nil, invalidRequest("insufficient stock for product %s (requested: %d, available: %d)", product.Name, item.Quantity, product.Stock)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * int64(item.Quantity)
	}

	if req.Total != 0 && req.Total != total {
		return nil, invalidRequest("total %d does not match items total %d", req.Total, total)
	}

	now := time.Now()
	newOrder := &models.Order{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Items:     items,
		Total:     total,
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orderRepo.Create(newOrder); err != nil {
		return nil, storeError("create order", err)
	}
	s.log.Infow("order created", "orderId", newOrder.ID, "userId", newOrder.UserID, "total", newOrder.Total)

	publishEvent(s.publisher, s.log, EventOrderCreated, OrderEvent{
		OrderID:    newOrder.ID,
		UserID:     newOrder.UserID,
		Status:     string(newOrder.Status),
		Total:      newOrder.Total,
		OccurredAt: now,
	})

	return newOrder, nil
}
