// Package ledger owns the rules for creating, editing, paying and deleting a
// sale: proportional discount allocation across line items, the
// payment/status state machine, invoice numbering and stock reconciliation.
// It is transport-agnostic; HTTP handlers translate requests into the input
// structs below and hand the result back as JSON.
package ledger

import (
	"encoding/json"
	"fmt"

	"hadeed-backend/models"
	"hadeed-backend/utils"
)

// LowStockThreshold is the on-hand quantity at or below which a decrement
// raises a notification.
const LowStockThreshold = 5

// defaultCustomer labels walk-in sales with no customer name.
const defaultCustomer = "Customer"

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// CreateSaleInput carries one create request. A zero Status means PAID.
// PaidAmount is only honored for CREDIT sales; nil means "paid in full".
type CreateSaleInput struct {
	Customer   string
	Items      []Line
	Discount   float64
	Status     models.SaleStatus
	PaidAmount *float64
}

// UpdateSaleInput carries one update request. Items == nil selects the
// status-only conversion path; otherwise all items are replaced. Nil pointer
// fields keep the sale's current values.
type UpdateSaleInput struct {
	Customer   *string
	Items      []Line
	Discount   *float64
	Status     models.SaleStatus
	PaidAmount *float64
}

// CreateSale validates and persists a new sale. Non-quotation sales get an
// invoice number, decrement stock for every line and trigger the low-stock
// check; quotations touch nothing but the sale rows.
func (e *Engine) CreateSale(in CreateSaleInput) (*models.Sale, error) {
	status := in.Status
	if status == "" {
		status = models.StatusPaid
	}
	if status == models.StatusDelivered {
		return nil, invalid(ErrInvalidStatus, "cannot create a sale as DELIVERED")
	}

	lines, total, err := AllocateDiscount(in.Items, in.Discount)
	if err != nil {
		return nil, err
	}
	status, paid, remaining, err := Settle(status, total, in.PaidAmount)
	if err != nil {
		return nil, err
	}

	customer := in.Customer
	if customer == "" {
		customer = defaultCustomer
	}

	sale := &models.Sale{
		Customer:        customer,
		Status:          status,
		Total:           total,
		Discount:        in.Discount,
		PaidAmount:      paid,
		RemainingAmount: remaining,
		Items:           itemsFromLines(lines),
	}

	err = e.store.Transact(func(tx Store) error {
		if status != models.StatusQuotation {
			n, err := tx.NextInvoiceNumber()
			if err != nil {
				return err
			}
			sale.InvoiceNumber = &n
		}
		if err := tx.CreateSale(sale); err != nil {
			return err
		}
		if status.Committed() {
			if err := e.decrementStock(tx, sale.Items); err != nil {
				return err
			}
		}
		return e.snapshot(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale returns a sale with its items and product snapshots.
func (e *Engine) GetSale(id uint) (*models.Sale, error) {
	return e.store.GetSale(id)
}

// UpdateSale dispatches between the two edit shapes: a status-only PAID
// update converts a quotation into a committed sale, while a request with
// items fully replaces the sale's lines and reconciles stock.
func (e *Engine) UpdateSale(id uint, in UpdateSaleInput) (*models.Sale, error) {
	if in.Items == nil {
		if in.Status != models.StatusPaid {
			return nil, invalid(ErrInvalidStatus, "status-only update must set status to PAID")
		}
		return e.convertQuotation(id)
	}
	return e.fullEdit(id, in)
}

// convertQuotation commits a quotation as-is: assigns an invoice number,
// decrements stock for every existing line and settles the payment as
// total minus discount.
func (e *Engine) convertQuotation(id uint) (*models.Sale, error) {
	var sale *models.Sale
	err := e.store.Transact(func(tx Store) error {
		s, err := tx.GetSale(id)
		if err != nil {
			return err
		}
		switch s.Status {
		case models.StatusPaid:
			return ErrAlreadyPaid
		case models.StatusQuotation:
			// proceed
		default:
			return ErrNotQuotation
		}

		fields := map[string]any{
			"status":           models.StatusPaid,
			"paid_amount":      utils.Round2(s.Total - s.Discount),
			"remaining_amount": 0.0,
		}
		if s.InvoiceNumber == nil {
			n, err := tx.NextInvoiceNumber()
			if err != nil {
				return err
			}
			fields["invoice_number"] = n
		}
		if err := tx.UpdateSale(id, fields); err != nil {
			return err
		}
		if err := e.decrementStock(tx, s.Items); err != nil {
			return err
		}

		sale, err = tx.GetSale(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// fullEdit replaces a sale's items and reconciles stock in one transaction:
// restore the old lines if they were committed, recompute the discount
// allocation over the new lines, re-settle payment, then decrement for the
// new lines if the resulting status is committed.
func (e *Engine) fullEdit(id uint, in UpdateSaleInput) (*models.Sale, error) {
	discount := 0.0
	if in.Discount != nil {
		discount = *in.Discount
	}

	lines, total, err := AllocateDiscount(in.Items, discount)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = e.store.Transact(func(tx Store) error {
		orig, err := tx.GetSale(id)
		if err != nil {
			return err
		}

		target := in.Status
		if target == "" {
			target = orig.Status
		}
		target, paid, remaining, err := Settle(target, total, in.PaidAmount)
		if err != nil {
			return err
		}

		if orig.Status.Committed() {
			if err := e.restoreStock(tx, orig.Items); err != nil {
				return err
			}
		}

		fields := map[string]any{
			"status":           target,
			"total":            total,
			"discount":         discount,
			"paid_amount":      paid,
			"remaining_amount": remaining,
		}
		if in.Customer != nil {
			fields["customer"] = *in.Customer
		}
		// First transition out of QUOTATION also allocates the number.
		if orig.InvoiceNumber == nil && target != models.StatusQuotation {
			n, err := tx.NextInvoiceNumber()
			if err != nil {
				return err
			}
			fields["invoice_number"] = n
		}

		if err := tx.ReplaceSaleItems(id, itemsFromLines(lines)); err != nil {
			return err
		}
		if err := tx.UpdateSale(id, fields); err != nil {
			return err
		}

		sale, err = tx.GetSale(id)
		if err != nil {
			return err
		}
		if target.Committed() {
			if err := e.decrementStock(tx, sale.Items); err != nil {
				return err
			}
		}
		return e.snapshot(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// DeleteSale removes a sale and its items, restoring stock first if the sale
// had committed it.
func (e *Engine) DeleteSale(id uint) error {
	return e.store.Transact(func(tx Store) error {
		sale, err := tx.GetSale(id)
		if err != nil {
			return err
		}
		if sale.Status.Committed() {
			if err := e.restoreStock(tx, sale.Items); err != nil {
				return err
			}
		}
		return tx.DeleteSale(id)
	})
}

// RecordPayment applies a partial payment to a credit sale. Stock was already
// committed when the sale was created, so this never touches products.
// Quotations must go through conversion first; paying one here would settle it
// without an invoice number or a stock decrement.
func (e *Engine) RecordPayment(id uint, amount float64) (*models.Sale, error) {
	if amount <= 0 {
		return nil, invalid(ErrInvalidPayment, "amount %.2f", amount)
	}

	var sale *models.Sale
	err := e.store.Transact(func(tx Store) error {
		s, err := tx.GetSale(id)
		if err != nil {
			return err
		}
		switch s.Status {
		case models.StatusPaid:
			return ErrAlreadyPaid
		case models.StatusCredit:
			// proceed
		default:
			return ErrNotCredit
		}
		if s.RemainingAmount <= 0 {
			return ErrAlreadyPaid
		}
		if utils.Round2(amount-s.RemainingAmount) > 0 {
			return ErrPaymentExceedsRemaining
		}

		paid := utils.Round2(s.PaidAmount + amount)
		remaining := utils.Round2(max(0, s.Total-paid))
		status := s.Status
		if remaining == 0 {
			status = models.StatusPaid
		}

		if err := tx.UpdateSale(id, map[string]any{
			"paid_amount":      paid,
			"remaining_amount": remaining,
			"status":           status,
		}); err != nil {
			return err
		}

		sale, err = tx.GetSale(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ListRevisions returns the audit snapshots of a sale, oldest first.
func (e *Engine) ListRevisions(id uint) ([]models.SaleRevision, error) {
	if _, err := e.store.GetSale(id); err != nil {
		return nil, err
	}
	return e.store.ListRevisions(id)
}

// decrementStock commits the given lines against product stock and raises a
// low-stock notification per affected product (not per unit, not per line).
func (e *Engine) decrementStock(tx Store, items []models.SaleItem) error {
	for _, mv := range aggregateByProduct(items) {
		p, err := tx.AdjustProductQuantity(mv.productID, -mv.quantity)
		if err != nil {
			return err
		}
		if p.Quantity <= LowStockThreshold {
			n := &models.Notification{
				Title:   "Low stock alert",
				Message: fmt.Sprintf("Stock of %s dropped to %d units in section %s. Please reorder.", p.Name, p.Quantity, p.Type),
				Type:    models.NotificationWarning,
			}
			if err := tx.AppendNotification(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// restoreStock puts the given lines back onto product stock. Restorations
// never raise notifications.
func (e *Engine) restoreStock(tx Store, items []models.SaleItem) error {
	for _, mv := range aggregateByProduct(items) {
		if _, err := tx.AdjustProductQuantity(mv.productID, mv.quantity); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) snapshot(tx Store, sale *models.Sale) error {
	blob, err := json.Marshal(sale)
	if err != nil {
		return err
	}
	return tx.AppendRevision(sale.ID, blob)
}

type movement struct {
	productID uint
	quantity  int
}

// aggregateByProduct folds duplicate product lines into one movement each,
// preserving first-seen order.
func aggregateByProduct(items []models.SaleItem) []movement {
	idx := make(map[uint]int, len(items))
	var out []movement
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			out[i].quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, movement{productID: it.ProductID, quantity: it.Quantity})
	}
	return out
}

func itemsFromLines(lines []Line) []models.SaleItem {
	items := make([]models.SaleItem, len(lines))
	for i, l := range lines {
		items[i] = models.SaleItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price}
	}
	return items
}
