package ledger

import (
	"hadeed-backend/models"
	"hadeed-backend/utils"
)

// Line is one requested invoice line: product, quantity and the unit price
// chosen for this sale (typically copied from the product, but editable).
type Line struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// AllocateDiscount spreads a flat invoice discount proportionally across the
// lines and returns the adjusted lines plus the invoice total.
//
// Each line gets a new unit price with its discount share baked in, rounded to
// 2 decimals. The total is recomputed from the rounded per-line prices rather
// than derived as subtotal-discount: the persisted line prices are the source
// of truth, and the total must reconcile exactly against them, even if
// rounding shifts it from subtotal-discount by a few cents.
func AllocateDiscount(lines []Line, discount float64) ([]Line, float64, error) {
	if len(lines) == 0 {
		return nil, 0, invalid(ErrNoItems, "empty item list")
	}
	if discount < 0 {
		return nil, 0, invalid(ErrInvalidDiscount, "discount %.2f", discount)
	}

	var subtotal float64
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, 0, invalid(ErrInvalidQuantity, "quantity %d at index %d", l.Quantity, i)
		}
		if l.Price < 0 {
			return nil, 0, invalid(ErrInvalidPrice, "price %.2f at index %d", l.Price, i)
		}
		subtotal += l.Price * float64(l.Quantity)
	}
	if discount > subtotal {
		return nil, 0, invalid(ErrDiscountExceedsSubtotal, "discount %.2f, subtotal %.2f", discount, subtotal)
	}

	ratio := 0.0
	if subtotal > 0 && discount > 0 {
		ratio = discount / subtotal
	}

	out := make([]Line, len(lines))
	var total float64
	for i, l := range lines {
		lineTotal := l.Price * float64(l.Quantity)
		lineDiscount := lineTotal * ratio
		unit := utils.Round2((lineTotal - lineDiscount) / float64(l.Quantity))
		out[i] = Line{ProductID: l.ProductID, Quantity: l.Quantity, Price: unit}
		total += unit * float64(l.Quantity)
	}

	return out, utils.Round2(total), nil
}

// Settle resolves the final status, paid amount and remaining amount for a
// sale with the given post-discount total.
//
// Quotations carry no payment. PAID sales are settled in full. CREDIT sales
// cap the requested payment at the total; a credit sale with nothing left to
// pay is upgraded to PAID. A nil requested amount means "pay in full".
func Settle(status models.SaleStatus, total float64, requested *float64) (models.SaleStatus, float64, float64, error) {
	switch status {
	case models.StatusQuotation:
		return status, 0, total, nil

	case models.StatusPaid, models.StatusDelivered:
		return status, total, 0, nil

	case models.StatusCredit:
		paid := total
		if requested != nil {
			if *requested < 0 {
				return status, 0, 0, invalid(ErrInvalidPaidAmount, "paid amount %.2f", *requested)
			}
			paid = min(*requested, total)
		}
		remaining := utils.Round2(total - paid)
		if remaining <= 0 {
			// Fully prepaid credit sale is just a paid sale.
			return models.StatusPaid, total, 0, nil
		}
		return status, utils.Round2(paid), remaining, nil

	default:
		return status, 0, 0, invalid(ErrInvalidStatus, "status %q", status)
	}
}
