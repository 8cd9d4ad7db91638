package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

// DefaultStockQuantity backfills listings created before stock tracking existed.
const DefaultStockQuantity = 10

// ProductView is a catalog row with legacy gaps normalized away.
type ProductView struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	StockQuantity int             `json:"stock_quantity"`
	Images        []string        `json:"images"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Service exposes normalized catalog reads.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error)
	ListProducts(ctx context.Context) ([]ProductView, error)
}

type service struct {
	repo         Repository
	defaultStock int
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository, defaultStock int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if defaultStock <= 0 {
		defaultStock = DefaultStockQuantity
	}
	return &service{repo: repo, defaultStock: defaultStock}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	view := s.normalize(product)
	return &view, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, s.normalize(&products[i]))
	}
	return views, nil
}

// normalize papers over historical data gaps: null stock, null image arrays and
// listings imported without a title.
func (s *service) normalize(product *models.Product) ProductView {
	stock := s.defaultStock
	if product.StockQuantity != nil {
		stock = *product.StockQuantity
	}

	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		images = append(images, img)
	}

	title := strings.TrimSpace(product.Title)
	if title == "" {
		title = strings.TrimSpace(product.Make + " " + product.Model)
	}

	return ProductView{
		ID:            product.ID,
		Title:         title,
		Make:          product.Make,
		Model:         product.Model,
		OriginalPrice: product.OriginalPrice,
		StockQuantity: stock,
		Images:        images,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
