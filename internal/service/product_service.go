package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"trustgate/internal/ids"
	"trustgate/internal/models"
)

type ProductStore interface {
	Create(ctx context.Context, product models.Product, images []models.ProductImage) error
	GetByID(ctx context.Context, id string) (models.Product, error)
}

type ImageLister interface {
	ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error)
}

type EventPublisher interface {
	PublishProductCreated(ctx context.Context, productID string, images int) error
}

type CreateProductInput struct {
	UserID      string
	ShopID      *string
	CategoryID  *string
	Name        string
	Description string
	Price       float64
	ImagePaths  []string
}

type ProductView struct {
	Product models.Product
	Images  []models.ProductImage
}

type ProductService struct {
	products ProductStore
	images   ImageLister
	events   EventPublisher
	log      zerolog.Logger
}

func NewProductService(products ProductStore, images ImageLister, events EventPublisher, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		images:   images,
		events:   events,
		log:      log,
	}
}

// Create stores the product inactive with every image PENDING. Scoring
// happens later in the worker; the published event only shortens the wait.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (models.Product, error) {
	product := models.Product{
		ID:          ids.New(),
		UserID:      in.UserID,
		ShopID:      in.ShopID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Status:      models.StatusPending,
	}

	images := make([]models.ProductImage, 0, len(in.ImagePaths))
	for _, p := range in.ImagePaths {
		images = append(images, models.ProductImage{
			ID:        ids.New(),
			ProductID: product.ID,
			UserID:    in.UserID,
			ImagePath: p,
			Status:    models.StatusPending,
		})
	}

	if err := s.products.Create(ctx, product, images); err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}

	log := s.log
	if scoped := zerolog.Ctx(ctx); scoped.GetLevel() != zerolog.Disabled {
		log = *scoped
	}
	if err := s.events.PublishProductCreated(ctx, product.ID, len(images)); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("publish product created failed; scheduled sweep will pick it up")
	}
	log.Info().
		Str("product_id", product.ID).
		Str("user_id", in.UserID).
		Int("images", len(images)).
		Msg("product created")

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (ProductView, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		return ProductView{}, fmt.Errorf("list product images: %w", err)
	}
	return ProductView{Product: product, Images: images}, nil
}
