package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autotradehub/autotradehub-backend/internal/catalog"
	"github.com/autotradehub/autotradehub-backend/internal/partners"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

type fakeStore struct {
	carts   map[uuid.UUID][]Line
	saveErr error
	saves   int
}

func (f *fakeStore) Load(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	if lines, ok := f.carts[userID]; ok {
		out := make([]Line, len(lines))
		copy(out, lines)
		return out, nil
	}
	return []Line{}, nil
}

func (f *fakeStore) Save(ctx context.Context, userID uuid.UUID, lines []Line) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[userID] = lines
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(f.carts, userID)
	return nil
}

type fakeResolver struct {
	resolutions map[uuid.UUID]partners.PriceResolution
	partnerIDs  map[uuid.UUID]uuid.UUID
}

func (f *fakeResolver) ResolvePartnerUserID(ctx context.Context, identifier uuid.UUID) (uuid.UUID, error) {
	if id, ok := f.partnerIDs[identifier]; ok {
		return id, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
}

func (f *fakeResolver) ResolvePrice(ctx context.Context, partnerIdentifier *uuid.UUID, productID uuid.UUID) (partners.PriceResolution, error) {
	if res, ok := f.resolutions[productID]; ok {
		return res, nil
	}
	return partners.PriceResolution{Source: partners.PriceSourceInvalid}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type fakeViewer struct {
	titles map[uuid.UUID]string
}

func (f *fakeViewer) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductView, error) {
	title, ok := f.titles[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &catalog.ProductView{ID: id, Title: title}, nil
}

type cartFixture struct {
	svc       Service
	store     *fakeStore
	resolver  *fakeResolver
	viewer    *fakeViewer
	userID    uuid.UUID
	productID uuid.UUID
	partnerID uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	userID := uuid.New()
	productID := uuid.New()
	partnerUserID := uuid.New()

	store := &fakeStore{carts: map[uuid.UUID][]Line{}}
	resolver := &fakeResolver{
		resolutions: map[uuid.UUID]partners.PriceResolution{
			productID: {
				Source:        partners.PriceSourcePartner,
				UnitPrice:     decimal.NewFromInt(25500),
				PartnerUserID: &partnerUserID,
			},
		},
		partnerIDs: map[uuid.UUID]uuid.UUID{partnerUserID: partnerUserID},
	}
	viewer := &fakeViewer{titles: map[uuid.UUID]string{productID: "2021 Audi A4"}}

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(store, resolver, viewer, log)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &cartFixture{
		svc:       svc,
		store:     store,
		resolver:  resolver,
		viewer:    viewer,
		userID:    userID,
		productID: productID,
		partnerID: partnerUserID,
	}
}

func TestAddItemSubtotalFollowsQuantity(t *testing.T) {
	f := newCartFixture(t)

	view, err := f.svc.AddItem(context.Background(), f.userID, AddItemInput{
		ProductID: f.productID,
		PartnerID: &f.partnerID,
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(view.Lines))
	}
	want := decimal.NewFromInt(76500)
	if !view.Lines[0].Subtotal().Equal(want) {
		t.Fatalf("expected subtotal %s, got %s", want, view.Lines[0].Subtotal())
	}
	if view.Lines[0].Title != "2021 Audi A4" {
		t.Fatalf("unexpected title %q", view.Lines[0].Title)
	}
}

func TestAddItemRejectsInvalidPrice(t *testing.T) {
	f := newCartFixture(t)

	free := uuid.New()
	f.resolver.resolutions[free] = partners.PriceResolution{Source: partners.PriceSourceInvalid}
	f.viewer.titles[free] = "Untagged import"

	_, err := f.svc.AddItem(context.Background(), f.userID, AddItemInput{ProductID: free, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.store.saves != 0 {
		t.Fatal("rejected add must not touch the store")
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), f.userID, AddItemInput{ProductID: f.productID, Quantity: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, PartnerID: &f.partnerID, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Reprice the listing between the two adds; the merged line must keep the
	// price captured by the first add.
	f.resolver.resolutions[f.productID] = partners.PriceResolution{
		Source:        partners.PriceSourcePartner,
		UnitPrice:     decimal.NewFromInt(99999),
		PartnerUserID: &f.partnerID,
	}

	view, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, PartnerID: &f.partnerID, Quantity: 2})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(view.Lines))
	}
	if view.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", view.Lines[0].Quantity)
	}
	if !view.Lines[0].UnitPrice.Equal(decimal.NewFromInt(25500)) {
		t.Fatalf("merge must keep add-time price, got %s", view.Lines[0].UnitPrice)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := f.svc.UpdateQuantity(ctx, f.userID, f.productID, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Lines))
	}
}

func TestUpdateQuantityRepricesFromStoredUnitPrice(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := f.svc.UpdateQuantity(ctx, f.userID, f.productID, 4)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	want := decimal.NewFromInt(102000)
	if !view.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, view.Total)
	}
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.UpdateQuantity(context.Background(), f.userID, uuid.New(), 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.svc.RemoveItem(ctx, f.userID, uuid.New())
	if err != nil {
		t.Fatalf("removing absent line must not error: %v", err)
	}
	if view.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %d", view.ItemCount)
	}
}

func TestItemCountCountsLinesNotQuantities(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	second := uuid.New()
	f.resolver.resolutions[second] = partners.PriceResolution{
		Source:    partners.PriceSourceCatalog,
		UnitPrice: decimal.NewFromInt(18000),
	}
	f.viewer.titles[second] = "2018 Honda Civic"

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, Quantity: 3}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: second, Quantity: 5})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if view.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", view.ItemCount)
	}
	want := decimal.NewFromInt(3*25500 + 5*18000)
	if !view.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, view.Total)
	}
}

func TestAddItemSurvivesSaveFailure(t *testing.T) {
	f := newCartFixture(t)
	f.store.saveErr = errors.New("redis gone")

	view, err := f.svc.AddItem(context.Background(), f.userID, AddItemInput{ProductID: f.productID, Quantity: 1})
	if err != nil {
		t.Fatalf("save failure must not fail the add: %v", err)
	}
	if view.ItemCount != 1 {
		t.Fatalf("expected in-memory view with one line, got %d", view.ItemCount)
	}
	if f.store.saves != 1 {
		t.Fatalf("expected a save attempt, got %d", f.store.saves)
	}
}

func TestClearPartnerKeepsOtherLines(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	direct := uuid.New()
	f.resolver.resolutions[direct] = partners.PriceResolution{
		Source:    partners.PriceSourceCatalog,
		UnitPrice: decimal.NewFromInt(9000),
	}
	f.viewer.titles[direct] = "Roof rack"

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, PartnerID: &f.partnerID, Quantity: 1}); err != nil {
		t.Fatalf("partner add: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: direct, Quantity: 1}); err != nil {
		t.Fatalf("direct add: %v", err)
	}

	matched, err := f.svc.PartnerLines(ctx, f.userID, f.partnerID)
	if err != nil {
		t.Fatalf("PartnerLines error: %v", err)
	}
	if len(matched) != 1 || matched[0].ProductID != f.productID {
		t.Fatalf("unexpected partner lines: %+v", matched)
	}

	view, err := f.svc.ClearPartner(ctx, f.userID, f.partnerID)
	if err != nil {
		t.Fatalf("ClearPartner error: %v", err)
	}
	if view.ItemCount != 1 || view.Lines[0].ProductID != direct {
		t.Fatalf("expected only the direct line to survive, got %+v", view.Lines)
	}
}

func TestClearDropsTheBlob(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, f.userID, AddItemInput{ProductID: f.productID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.svc.Clear(ctx, f.userID); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	view, err := f.svc.Get(ctx, f.userID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if view.ItemCount != 0 || !view.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}
