package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"santafe-store/internal/domain"
	"santafe-store/internal/repository"
	"santafe-store/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultProductLimit = 100
	MaxProductLimit     = 500
)

// ProductInput is the full set of mutable product fields. Image is optional;
// on update an absent image keeps the stored one.
type ProductInput struct {
	Name        string
	CategoryID  uuid.NullUUID
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       []byte
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, caller domain.Identity, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, caller domain.Identity, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, caller domain.Identity, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo   repository.CategoryRepository
	productRepo    repository.ProductRepository
	images         storage.ImageStore
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	maxUploadBytes int64,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo:   categoryRepo,
		productRepo:    productRepo,
		images:         images,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, persistenceFailure(err)
	}
	return categories, nil
}

// ListProducts clamps the page window before querying
func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	if filter.Offset < 0 {
		return nil, invalidInput("offset must not be negative", nil)
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultProductLimit
	case filter.Limit < 1:
		filter.Limit = 1
	case filter.Limit > MaxProductLimit:
		filter.Limit = MaxProductLimit
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, persistenceFailure(err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, caller domain.Identity, input ProductInput) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}

	imageURL, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	product.ImageURL = imageURL

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.discardImage(ctx, imageURL)
		return nil, mapProductError(err)
	}

	return product, nil
}

// UpdateProduct replaces every mutable field of an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, caller domain.Identity, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err)
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          id,
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    imageURL,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.discardImage(ctx, imageURL)
		return nil, mapProductError(err)
	}

	if imageURL != nil && existing.ImageURL != nil {
		s.discardImage(ctx, existing.ImageURL)
	}

	return product, nil
}

// DeleteProduct removes a product unconditionally. Order history keeps its
// snapshot lines.
func (s *catalogService) DeleteProduct(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return mapProductError(err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return mapProductError(err)
	}

	s.discardImage(ctx, existing.ImageURL)
	return nil
}

// checkCategory rejects a category id that does not exist before any image
// is written. The foreign key still guards a category deleted in between.
func (s *catalogService) checkCategory(ctx context.Context, id uuid.NullUUID) error {
	if !id.Valid {
		return nil
	}

	if _, err := s.categoryRepo.FindByID(ctx, id.UUID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return invalidInput("category does not exist", err)
		}
		return persistenceFailure(err)
	}
	return nil
}

// storeImage sniffs and saves an upload; no upload yields a nil URL
func (s *catalogService) storeImage(ctx context.Context, data []byte) (*string, error) {
	if len(data) == 0 {
		return nil, nil
	}

	img, err := storage.DetectImage(data, s.maxUploadBytes)
	if err != nil {
		return nil, invalidInput(err.Error(), err)
	}

	url, err := s.images.Save(ctx, storage.NewImageName(img.Extension), img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		return nil, persistenceFailure(err)
	}

	return &url, nil
}

// discardImage removes an image that is no longer referenced
func (s *catalogService) discardImage(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	if err := s.images.Delete(ctx, *url); err != nil {
		s.logger.Warn("Failed to delete product image", zap.String("url", *url), zap.Error(err))
	}
}

func requireAdmin(caller domain.Identity) error {
	if caller.UserID == uuid.Nil {
		return unauthenticated("authentication required")
	}
	if !caller.IsAdmin {
		return forbidden("admin access required")
	}
	return nil
}

func validateProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return invalidInput("name is required", nil)
	}
	if err := domain.CheckAmount(input.Price); err != nil {
		return invalidInput("price "+err.Error(), err)
	}
	if input.Stock < 0 {
		return invalidInput("stock must not be negative", nil)
	}
	if input.Stock > domain.MaxQuantity {
		return invalidInput("stock "+domain.ErrQuantityTooLarge.Error(), domain.ErrQuantityTooLarge)
	}
	return nil
}

func mapProductError(err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return notFound("product not found", err)
	case errors.Is(err, repository.ErrUnknownCategory):
		return invalidInput("category does not exist", err)
	default:
		return persistenceFailure(err)
	}
}
