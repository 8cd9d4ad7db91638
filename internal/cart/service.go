package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/autotradehub/autotradehub-backend/internal/catalog"
	"github.com/autotradehub/autotradehub-backend/internal/partners"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

type priceResolver interface {
	ResolvePartnerUserID(ctx context.Context, identifier uuid.UUID) (uuid.UUID, error)
	ResolvePrice(ctx context.Context, partnerIdentifier *uuid.UUID, productID uuid.UUID) (partners.PriceResolution, error)
}

type productViewer interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductView, error)
}

// AddItemInput describes one add-to-cart request. PartnerID may be either a
// partner profile id or the partner's user id; the resolver sorts that out.
type AddItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	PartnerID *uuid.UUID `json:"partner_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

// Service aggregates a user's cart held in Redis.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	PartnerLines(ctx context.Context, userID, partnerIdentifier uuid.UUID) ([]Line, error)
	ClearPartner(ctx context.Context, userID, partnerIdentifier uuid.UUID) (*View, error)
}

type service struct {
	store    Store
	resolver priceResolver
	products productViewer
	log      *logger.Logger
}

// NewService builds the cart service.
func NewService(store Store, resolver priceResolver, products productViewer, log *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if products == nil {
		return nil, fmt.Errorf("product viewer required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, resolver: resolver, products: products, log: log}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildView(lines), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	resolution, err := s.resolver.ResolvePrice(ctx, input.PartnerID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !resolution.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no purchasable price")
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := findLine(lines, input.ProductID); idx >= 0 {
		// Merge into the existing line. The stored unit price wins even if
		// the listing has since been repriced.
		lines[idx].Quantity += input.Quantity
	} else {
		product, err := s.products.GetProduct(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			ProductID:     input.ProductID,
			PartnerUserID: resolution.PartnerUserID,
			Title:         product.Title,
			Quantity:      input.Quantity,
			UnitPrice:     resolution.UnitPrice,
		})
	}

	s.persist(ctx, userID, lines)
	return buildView(lines), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := findLine(lines, productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	lines[idx].Quantity = quantity

	s.persist(ctx, userID, lines)
	return buildView(lines), nil
}

// RemoveItem is idempotent; removing an absent line returns the cart as-is.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := findLine(lines, productID)
	if idx < 0 {
		return buildView(lines), nil
	}
	lines = removeLine(lines, idx)

	s.persist(ctx, userID, lines)
	return buildView(lines), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// PartnerLines returns the cart rows attributed to one partner. The identifier
// is resolved first so profile ids and user ids both work.
func (s *service) PartnerLines(ctx context.Context, userID, partnerIdentifier uuid.UUID) ([]Line, error) {
	partnerUserID, err := s.resolver.ResolvePartnerUserID(ctx, partnerIdentifier)
	if err != nil {
		return nil, err
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := []Line{}
	for _, l := range lines {
		if l.PartnerUserID != nil && *l.PartnerUserID == partnerUserID {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// ClearPartner drops a single partner's rows, leaving the rest of the cart
// untouched. Used after a per-partner checkout completes.
func (s *service) ClearPartner(ctx context.Context, userID, partnerIdentifier uuid.UUID) (*View, error) {
	partnerUserID, err := s.resolver.ResolvePartnerUserID(ctx, partnerIdentifier)
	if err != nil {
		return nil, err
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := []Line{}
	for _, l := range lines {
		if l.PartnerUserID != nil && *l.PartnerUserID == partnerUserID {
			continue
		}
		kept = append(kept, l)
	}

	s.persist(ctx, userID, kept)
	return buildView(kept), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	lines, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return lines, nil
}

// persist writes the cart back without failing the request. The in-memory
// view the caller gets is already correct; a dropped save only costs the
// user their cart on the next visit, which beats a failed add.
func (s *service) persist(ctx context.Context, userID uuid.UUID, lines []Line) {
	if err := s.store.Save(ctx, userID, lines); err != nil {
		s.log.Error(s.log.WithUserID(ctx, userID.String()), "persisting cart", err)
	}
}
