// Package service turns raw user input into product store calls and hands
// back a fresh listing after every change.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/productdesk/internal/errors"
	"github.com/abgdnv/productdesk/internal/store"
	"github.com/abgdnv/productdesk/internal/store/db"
	"github.com/go-playground/validator/v10"
)

// ProductService defines the catalog operations offered to front ends.
// Every mutation is followed by a full reload, so callers can repaint from the result.
type ProductService interface {
	// EnsureSchema prepares the backing store. Call once, before anything else.
	EnsureSchema(ctx context.Context) error

	// ListAll returns every product.
	// Returns an empty slice if no products exist.
	ListAll(ctx context.Context) ([]ProductDto, error)

	// Create validates the input and adds a product.
	// Returns a ValidationError for an empty name or unparsable price.
	Create(ctx context.Context, input ProductInput) (*Created, error)

	// Update validates the input and replaces name and price of product id.
	// An unknown id changes nothing and is not an error.
	Update(ctx context.Context, id int64, input ProductInput) (*Listing, error)

	// DeleteByID removes product id.
	// An unknown id changes nothing and is not an error.
	DeleteByID(ctx context.Context, id int64) (*Listing, error)
}

// Service implements ProductService on top of a store.ProductStore.
type Service struct {
	repository store.ProductStore
	validate   *validator.Validate
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		repository: repo,
		validate:   v,
	}
}

// ProductInput is what a user typed: a name and the price text verbatim.
type ProductInput struct {
	Name  string `json:"name"  validate:"required"`
	Price string `json:"price" validate:"required"`
}

// ProductDto represents the data transfer object for a product.
// ID is zero for values that were not read back from storage.
type ProductDto struct {
	ID    int64   `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Created is the result of Create: the new product and the reloaded listing.
type Created struct {
	Product  ProductDto   `json:"product"`
	Products []ProductDto `json:"products"`
}

// Listing is the reloaded product list returned after Update and DeleteByID.
type Listing struct {
	Products []ProductDto `json:"products"`
}

// EnsureSchema prepares the backing store.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if err := s.repository.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare product storage: %w", err)
	}
	return nil
}

// ListAll retrieves all products as ProductDTOs.
func (s *Service) ListAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// Create validates input, inserts the product and reloads the listing.
func (s *Service) Create(ctx context.Context, input ProductInput) (*Created, error) {
	price, err := s.parse(input)
	if err != nil {
		return nil, err
	}
	p, err := s.repository.Insert(ctx, input.Name, price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	products, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Created{Product: *toDto(p), Products: products}, nil
}

// Update validates input, updates product id and reloads the listing.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*Listing, error) {
	price, err := s.parse(input)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, id, input.Name, price); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return s.reload(ctx)
}

// DeleteByID deletes product id and reloads the listing.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*Listing, error) {
	if err := s.repository.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) (*Listing, error) {
	products, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Listing{Products: products}, nil
}

// parse checks the required fields, then the price text. The returned error
// matches perrors.ErrValidation and, for missing fields, also unwraps to
// validator.ValidationErrors.
func (s *Service) parse(input ProductInput) (float64, error) {
	if err := s.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			first := validationErrors[0]
			return 0, fmt.Errorf("%w: %w", perrors.Invalid(first.Field(), "is "+first.Tag()), validationErrors)
		}
		return 0, perrors.Invalid("input", err.Error())
	}
	return ParsePrice(input.Price)
}

// toDto converts a db.Product to a ProductDto.
func toDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}
}
