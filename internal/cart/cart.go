package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one cart row. UnitPrice is fixed at the moment the item is added;
// later quantity changes reprice from this stored value, never from the
// catalog.
type Line struct {
	ProductID     uuid.UUID       `json:"product_id"`
	PartnerUserID *uuid.UUID      `json:"partner_user_id,omitempty"`
	Title         string          `json:"title"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// Subtotal is always quantity times the stored unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is the aggregate a caller sees after any cart mutation.
type View struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func buildView(lines []Line) *View {
	if lines == nil {
		lines = []Line{}
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	// ItemCount counts distinct lines, not summed quantities. The storefront
	// badge has always worked this way.
	return &View{Lines: lines, Total: total, ItemCount: len(lines)}
}

func findLine(lines []Line, productID uuid.UUID) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func removeLine(lines []Line, idx int) []Line {
	return append(lines[:idx], lines[idx+1:]...)
}
