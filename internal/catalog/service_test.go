package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

type fakeRepository struct {
	products map[uuid.UUID]*models.Product
	listErr  error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func TestGetProductDefaultsMissingStock(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{products: map[uuid.UUID]*models.Product{
		id: {
			ID:            id,
			Title:         "2019 Land Cruiser",
			Make:          "Toyota",
			Model:         "Land Cruiser",
			OriginalPrice: decimal.NewFromInt(42000),
		},
	}}
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	view, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct error: %v", err)
	}
	if view.StockQuantity != DefaultStockQuantity {
		t.Fatalf("expected default stock %d, got %d", DefaultStockQuantity, view.StockQuantity)
	}
	if view.Images == nil {
		t.Fatal("expected non-nil images slice")
	}
	if len(view.Images) != 0 {
		t.Fatalf("expected empty images, got %v", view.Images)
	}
}

func TestGetProductKeepsRecordedStock(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{products: map[uuid.UUID]*models.Product{
		id: {
			ID:            id,
			Make:          "Honda",
			Model:         "Civic",
			OriginalPrice: decimal.NewFromInt(18000),
			StockQuantity: intPtr(3),
			Images:        []string{"https://cdn/one.jpg", " ", "https://cdn/two.jpg"},
		},
	}}
	svc, _ := NewService(repo, 10)

	view, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct error: %v", err)
	}
	if view.StockQuantity != 3 {
		t.Fatalf("expected stock 3, got %d", view.StockQuantity)
	}
	if len(view.Images) != 2 {
		t.Fatalf("expected blank image entries dropped, got %v", view.Images)
	}
}

func TestGetProductTitleFallsBackToMakeModel(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{products: map[uuid.UUID]*models.Product{
		id: {
			ID:            id,
			Title:         "  ",
			Make:          "Ford",
			Model:         "Transit",
			OriginalPrice: decimal.NewFromInt(30000),
		},
	}}
	svc, _ := NewService(repo, 10)

	view, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct error: %v", err)
	}
	if view.Title != "Ford Transit" {
		t.Fatalf("expected title fallback, got %q", view.Title)
	}
}

func TestGetProductNotFound(t *testing.T) {
	repo := &fakeRepository{products: map[uuid.UUID]*models.Product{}}
	svc, _ := NewService(repo, 10)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListProductsWrapsRepoError(t *testing.T) {
	repo := &fakeRepository{listErr: errors.New("conn reset")}
	svc, _ := NewService(repo, 10)

	_, err := svc.ListProducts(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
