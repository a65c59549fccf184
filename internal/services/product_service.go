package services

import (
	"vitamart/internal/models"
	"vitamart/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products, optionally restricted to a category.
func (s *ProductService) GetAllProducts(category string) ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil || category == "" {
		return products, err
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct replaces an existing product and returns the stored copy.
func (s *ProductService) UpdateProduct(product *models.Product) (*models.Product, error) {
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return s.repo.GetByID(product.ID)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
