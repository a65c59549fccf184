package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"vitamart/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory ProductRepository. It stamps and
// orders records the way the GORM repository does, so services behave the
// same against either.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

// NewMockProductRepository creates an empty catalog, optionally seeded.
func NewMockProductRepository(seed ...models.Product) *MockProductRepository {
	r := &MockProductRepository{
		products: make(map[string]models.Product, len(seed)),
	}
	for i := range seed {
		_ = r.Create(&seed[i])
	}
	return r
}

// GetAll returns all products, oldest first.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

// GetByID returns a copy of the product.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create stores a product, assigning an ID and timestamps when unset.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("failed to create product: duplicate ID %s", product.ID)
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update replaces every field except the ID and creation time.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s %w for update", product.ID, ErrNotFound)
	}
	updated := *product
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.products[product.ID] = updated
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s %w for deletion", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}
