package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"hadeed-backend/models"
)

// memStore is an in-memory Store. Transact snapshots all state up front and
// restores it when fn fails, so rollback semantics match a real transaction.
type memStore struct {
	mu            sync.Mutex
	sales         map[uint]*models.Sale
	products      map[uint]*models.Product
	notifications []models.Notification
	revisions     []models.SaleRevision
	saleSeq       uint
}

func newMemStore(products ...*models.Product) *memStore {
	s := &memStore{
		sales:    make(map[uint]*models.Sale),
		products: make(map[uint]*models.Product),
	}
	for _, p := range products {
		cp := *p
		s.products[p.Id] = &cp
	}
	return s
}

type memSnapshot struct {
	sales         map[uint]*models.Sale
	products      map[uint]*models.Product
	notifications []models.Notification
	revisions     []models.SaleRevision
	saleSeq       uint
}

func copySale(s *models.Sale) *models.Sale {
	cp := *s
	cp.Items = append([]models.SaleItem(nil), s.Items...)
	if s.InvoiceNumber != nil {
		n := *s.InvoiceNumber
		cp.InvoiceNumber = &n
	}
	return &cp
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		sales:         make(map[uint]*models.Sale, len(m.sales)),
		products:      make(map[uint]*models.Product, len(m.products)),
		notifications: append([]models.Notification(nil), m.notifications...),
		revisions:     append([]models.SaleRevision(nil), m.revisions...),
		saleSeq:       m.saleSeq,
	}
	for id, s := range m.sales {
		snap.sales[id] = copySale(s)
	}
	for id, p := range m.products {
		cp := *p
		snap.products[id] = &cp
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.sales = snap.sales
	m.products = snap.products
	m.notifications = snap.notifications
	m.revisions = snap.revisions
	m.saleSeq = snap.saleSeq
}

func (m *memStore) Transact(fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) GetSale(id uint) (*models.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return copySale(s), nil
}

func (m *memStore) CreateSale(sale *models.Sale) error {
	m.saleSeq++
	sale.ID = m.saleSeq
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	m.sales[sale.ID] = copySale(sale)
	return nil
}

func (m *memStore) UpdateSale(id uint, fields map[string]any) error {
	s, ok := m.sales[id]
	if !ok {
		return ErrSaleNotFound
	}
	for k, v := range fields {
		switch k {
		case "customer":
			s.Customer = v.(string)
		case "status":
			s.Status = v.(models.SaleStatus)
		case "total":
			s.Total = v.(float64)
		case "discount":
			s.Discount = v.(float64)
		case "paid_amount":
			s.PaidAmount = v.(float64)
		case "remaining_amount":
			s.RemainingAmount = v.(float64)
		case "invoice_number":
			n := v.(int)
			s.InvoiceNumber = &n
		default:
			return fmt.Errorf("memStore: unknown field %q", k)
		}
	}
	return nil
}

func (m *memStore) ReplaceSaleItems(saleID uint, items []models.SaleItem) error {
	s, ok := m.sales[saleID]
	if !ok {
		return ErrSaleNotFound
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	s.Items = append([]models.SaleItem(nil), items...)
	return nil
}

func (m *memStore) DeleteSale(id uint) error {
	if _, ok := m.sales[id]; !ok {
		return ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *memStore) NextInvoiceNumber() (int, error) {
	maxN := 0
	for _, s := range m.sales {
		if s.InvoiceNumber != nil && *s.InvoiceNumber > maxN {
			maxN = *s.InvoiceNumber
		}
	}
	return maxN + 1, nil
}

func (m *memStore) AdjustProductQuantity(productID uint, delta int) (*models.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	p.Quantity += delta
	cp := *p
	return &cp, nil
}

func (m *memStore) AppendNotification(n *models.Notification) error {
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) AppendRevision(saleID uint, snapshot []byte) error {
	next := 1
	for _, r := range m.revisions {
		if r.SaleID == saleID && r.VersionNo >= next {
			next = r.VersionNo + 1
		}
	}
	m.revisions = append(m.revisions, models.SaleRevision{
		SaleID:    saleID,
		VersionNo: next,
		Snapshot:  snapshot,
	})
	return nil
}

func (m *memStore) ListRevisions(saleID uint) ([]models.SaleRevision, error) {
	var out []models.SaleRevision
	for _, r := range m.revisions {
		if r.SaleID == saleID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNo < out[j].VersionNo })
	return out, nil
}

func (m *memStore) revisionCount(saleID uint) int {
	revs, _ := m.ListRevisions(saleID)
	return len(revs)
}

func pay(v float64) *float64 { return &v }

func steelBar(id uint, qty int) *models.Product {
	return &models.Product{Id: id, Name: fmt.Sprintf("Rebar %d", id), Type: "Rebar", Price: 100, Quantity: qty}
}

func TestCreateSalePaid(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 2, Price: 100}},
		Status: models.StatusPaid,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	if !almostEqual(sale.Total, 200) || !almostEqual(sale.PaidAmount, 200) || !almostEqual(sale.RemainingAmount, 0) {
		t.Errorf("totals = (%v, %v, %v), want (200, 200, 0)", sale.Total, sale.PaidAmount, sale.RemainingAmount)
	}
	if sale.Status != models.StatusPaid {
		t.Errorf("status = %v, want PAID", sale.Status)
	}
	if sale.InvoiceNumber == nil || *sale.InvoiceNumber != 1 {
		t.Errorf("invoice number = %v, want 1", sale.InvoiceNumber)
	}
	if got := store.products[1].Quantity; got != 8 {
		t.Errorf("product quantity = %d, want 8", got)
	}
	if len(store.notifications) != 0 {
		t.Errorf("unexpected notifications: %v", store.notifications)
	}
	if store.revisionCount(sale.ID) != 1 {
		t.Errorf("revision count = %d, want 1", store.revisionCount(sale.ID))
	}
	if sale.Customer != "Customer" {
		t.Errorf("customer = %q, want default label", sale.Customer)
	}
}

func TestCreateSaleWithDiscount(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Customer: "Al Noor Workshop",
		Items:    []Line{{ProductID: 1, Quantity: 3, Price: 100}},
		Discount: 30,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	if !almostEqual(sale.Total, 270) {
		t.Errorf("total = %v, want 270", sale.Total)
	}
	if !almostEqual(sale.Items[0].Price, 90) {
		t.Errorf("unit price = %v, want 90", sale.Items[0].Price)
	}
	// default status is PAID
	if sale.Status != models.StatusPaid || !almostEqual(sale.PaidAmount, 270) {
		t.Errorf("settlement = (%v, %v), want (PAID, 270)", sale.Status, sale.PaidAmount)
	}
}

func TestCreateQuotationTouchesNoStock(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 4, Price: 50}},
		Status: models.StatusQuotation,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	if sale.InvoiceNumber != nil {
		t.Errorf("quotation got invoice number %d", *sale.InvoiceNumber)
	}
	if !almostEqual(sale.PaidAmount, 0) || !almostEqual(sale.RemainingAmount, 200) {
		t.Errorf("settlement = (%v, %v), want (0, 200)", sale.PaidAmount, sale.RemainingAmount)
	}
	if got := store.products[1].Quantity; got != 10 {
		t.Errorf("product quantity = %d, want untouched 10", got)
	}
	if len(store.notifications) != 0 {
		t.Errorf("quotation raised notifications: %v", store.notifications)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	tests := []struct {
		name    string
		input   CreateSaleInput
		wantErr error
	}{
		{
			name:    "no items",
			input:   CreateSaleInput{Status: models.StatusPaid},
			wantErr: ErrNoItems,
		},
		{
			name: "discount above subtotal",
			input: CreateSaleInput{
				Items:    []Line{{ProductID: 1, Quantity: 1, Price: 10}},
				Discount: 20,
			},
			wantErr: ErrDiscountExceedsSubtotal,
		},
		{
			name: "delivered cannot be created directly",
			input: CreateSaleInput{
				Items:  []Line{{ProductID: 1, Quantity: 1, Price: 10}},
				Status: models.StatusDelivered,
			},
			wantErr: ErrInvalidStatus,
		},
		{
			name: "unknown product",
			input: CreateSaleInput{
				Items: []Line{{ProductID: 99, Quantity: 1, Price: 10}},
			},
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.CreateSale(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSale() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(store.sales) != 0 {
		t.Errorf("failed creates left %d sales behind", len(store.sales))
	}
	if store.products[1].Quantity != 10 {
		t.Errorf("failed creates changed stock to %d", store.products[1].Quantity)
	}
}

func TestCreditFlow(t *testing.T) {
	store := newMemStore(steelBar(1, 20))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items:      []Line{{ProductID: 1, Quantity: 5, Price: 100}},
		Status:     models.StatusCredit,
		PaidAmount: pay(200),
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if sale.Status != models.StatusCredit {
		t.Fatalf("status = %v, want CREDIT", sale.Status)
	}
	if !almostEqual(sale.RemainingAmount, 300) {
		t.Fatalf("remaining = %v, want 300", sale.RemainingAmount)
	}
	if sale.InvoiceNumber == nil {
		t.Fatal("credit sale must carry an invoice number")
	}
	if got := store.products[1].Quantity; got != 15 {
		t.Errorf("stock committed at creation: quantity = %d, want 15", got)
	}

	// Overpayment is rejected.
	if _, err := eng.RecordPayment(sale.ID, 301); !errors.Is(err, ErrPaymentExceedsRemaining) {
		t.Errorf("overpayment error = %v, want ErrPaymentExceedsRemaining", err)
	}

	// Settling the remainder upgrades to PAID without touching stock again.
	settled, err := eng.RecordPayment(sale.ID, 300)
	if err != nil {
		t.Fatalf("RecordPayment() error: %v", err)
	}
	if settled.Status != models.StatusPaid || !almostEqual(settled.RemainingAmount, 0) {
		t.Errorf("after final payment = (%v, %v), want (PAID, 0)", settled.Status, settled.RemainingAmount)
	}
	if !almostEqual(settled.PaidAmount, 500) {
		t.Errorf("paid = %v, want 500", settled.PaidAmount)
	}
	if got := store.products[1].Quantity; got != 15 {
		t.Errorf("payment touched stock: quantity = %d, want 15", got)
	}

	// Further payments are a conflict.
	if _, err := eng.RecordPayment(sale.ID, 1); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("payment on settled sale error = %v, want ErrAlreadyPaid", err)
	}

	// Invalid amounts never reach the store.
	if _, err := eng.RecordPayment(sale.ID, 0); !IsValidation(err) {
		t.Errorf("zero amount error = %v, want validation error", err)
	}
}

func TestPaymentRequiresCreditSale(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	quote, err := eng.CreateSale(CreateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 2, Price: 100}},
		Status: models.StatusQuotation,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	// Paying a quotation would settle it without an invoice number or a
	// stock decrement; it has to go through conversion instead.
	if _, err := eng.RecordPayment(quote.ID, 200); !errors.Is(err, ErrNotCredit) {
		t.Fatalf("payment on quotation error = %v, want ErrNotCredit", err)
	}

	after, err := eng.GetSale(quote.ID)
	if err != nil {
		t.Fatalf("GetSale() error: %v", err)
	}
	if after.Status != models.StatusQuotation {
		t.Errorf("status = %v, want QUOTATION untouched", after.Status)
	}
	if after.InvoiceNumber != nil {
		t.Errorf("rejected payment assigned invoice number %d", *after.InvoiceNumber)
	}
	if !almostEqual(after.PaidAmount, 0) {
		t.Errorf("paid = %v, want 0", after.PaidAmount)
	}
	if got := store.products[1].Quantity; got != 10 {
		t.Errorf("rejected payment changed stock: quantity = %d, want 10", got)
	}
}

func TestFullyPrepaidCreditBecomesPaid(t *testing.T) {
	store := newMemStore(steelBar(1, 20))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items:      []Line{{ProductID: 1, Quantity: 2, Price: 100}},
		Status:     models.StatusCredit,
		PaidAmount: pay(200),
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if sale.Status != models.StatusPaid {
		t.Errorf("status = %v, want upgrade to PAID", sale.Status)
	}
}

func TestConvertQuotation(t *testing.T) {
	store := newMemStore(steelBar(1, 10), steelBar(2, 10))
	eng := NewEngine(store)

	quote, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{
			{ProductID: 1, Quantity: 2, Price: 100},
			{ProductID: 2, Quantity: 3, Price: 50},
		},
		Discount: 35,
		Status:   models.StatusQuotation,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	sale, err := eng.UpdateSale(quote.ID, UpdateSaleInput{Status: models.StatusPaid})
	if err != nil {
		t.Fatalf("UpdateSale() convert error: %v", err)
	}

	if sale.Status != models.StatusPaid {
		t.Errorf("status = %v, want PAID", sale.Status)
	}
	if sale.InvoiceNumber == nil || *sale.InvoiceNumber != 1 {
		t.Errorf("invoice number = %v, want 1", sale.InvoiceNumber)
	}
	if got := store.products[1].Quantity; got != 8 {
		t.Errorf("product 1 quantity = %d, want 8", got)
	}
	if got := store.products[2].Quantity; got != 7 {
		t.Errorf("product 2 quantity = %d, want 7", got)
	}
	if !almostEqual(sale.PaidAmount, sale.Total-sale.Discount) {
		t.Errorf("paid = %v, want total-discount = %v", sale.PaidAmount, sale.Total-sale.Discount)
	}
	if !almostEqual(sale.RemainingAmount, 0) {
		t.Errorf("remaining = %v, want 0", sale.RemainingAmount)
	}

	// Re-converting is a conflict.
	if _, err := eng.UpdateSale(quote.ID, UpdateSaleInput{Status: models.StatusPaid}); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("re-convert error = %v, want ErrAlreadyPaid", err)
	}
}

func TestConvertRejectsCreditSales(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items:      []Line{{ProductID: 1, Quantity: 1, Price: 100}},
		Status:     models.StatusCredit,
		PaidAmount: pay(50),
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	if _, err := eng.UpdateSale(sale.ID, UpdateSaleInput{Status: models.StatusPaid}); !errors.Is(err, ErrNotQuotation) {
		t.Errorf("convert credit sale error = %v, want ErrNotQuotation", err)
	}
	if got := store.products[1].Quantity; got != 9 {
		t.Errorf("rejected convert changed stock: quantity = %d, want 9", got)
	}
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{{ProductID: 1, Quantity: 4, Price: 25}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != 6 {
		t.Fatalf("quantity after sale = %d, want 6", got)
	}

	if err := eng.DeleteSale(sale.ID); err != nil {
		t.Fatalf("DeleteSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != 10 {
		t.Errorf("quantity after delete = %d, want restored 10", got)
	}
	if _, err := eng.GetSale(sale.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("GetSale() after delete error = %v, want ErrSaleNotFound", err)
	}
}

func TestDeleteQuotationLeavesStockAlone(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	quote, err := eng.CreateSale(CreateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 4, Price: 25}},
		Status: models.StatusQuotation,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if err := eng.DeleteSale(quote.ID); err != nil {
		t.Fatalf("DeleteSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != 10 {
		t.Errorf("quotation delete changed stock: quantity = %d, want 10", got)
	}
}

func TestFullEditReconcilesStock(t *testing.T) {
	store := newMemStore(steelBar(1, 10), steelBar(2, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{{ProductID: 1, Quantity: 3, Price: 100}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != 7 {
		t.Fatalf("quantity after create = %d, want 7", got)
	}

	discount := 20.0
	customer := "Bridge Site B"
	edited, err := eng.UpdateSale(sale.ID, UpdateSaleInput{
		Customer: &customer,
		Items:    []Line{{ProductID: 2, Quantity: 2, Price: 100}},
		Discount: &discount,
	})
	if err != nil {
		t.Fatalf("UpdateSale() error: %v", err)
	}

	if got := store.products[1].Quantity; got != 10 {
		t.Errorf("old line not restored: product 1 quantity = %d, want 10", got)
	}
	if got := store.products[2].Quantity; got != 8 {
		t.Errorf("new line not committed: product 2 quantity = %d, want 8", got)
	}
	if len(edited.Items) != 1 || edited.Items[0].ProductID != 2 {
		t.Errorf("items not replaced: %+v", edited.Items)
	}
	if !almostEqual(edited.Total, 180) {
		t.Errorf("total = %v, want 180", edited.Total)
	}
	if !almostEqual(edited.Items[0].Price, 90) {
		t.Errorf("unit price = %v, want 90", edited.Items[0].Price)
	}
	if edited.Customer != customer {
		t.Errorf("customer = %q, want %q", edited.Customer, customer)
	}
	if store.revisionCount(sale.ID) != 2 {
		t.Errorf("revision count = %d, want 2", store.revisionCount(sale.ID))
	}
}

func TestFullEditOfQuotationAssignsInvoiceNumber(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	quote, err := eng.CreateSale(CreateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 1, Price: 100}},
		Status: models.StatusQuotation,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	edited, err := eng.UpdateSale(quote.ID, UpdateSaleInput{
		Items:  []Line{{ProductID: 1, Quantity: 2, Price: 100}},
		Status: models.StatusPaid,
	})
	if err != nil {
		t.Fatalf("UpdateSale() error: %v", err)
	}
	if edited.InvoiceNumber == nil || *edited.InvoiceNumber != 1 {
		t.Errorf("invoice number = %v, want 1", edited.InvoiceNumber)
	}
	if got := store.products[1].Quantity; got != 8 {
		t.Errorf("quantity = %d, want 8", got)
	}
}

func TestFullEditRollsBackOnFailure(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{{ProductID: 1, Quantity: 3, Price: 100}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	// Product 99 does not exist; the whole edit must roll back, leaving the
	// original items and the committed stock untouched.
	_, err = eng.UpdateSale(sale.ID, UpdateSaleInput{
		Items: []Line{{ProductID: 99, Quantity: 1, Price: 10}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("UpdateSale() error = %v, want ErrProductNotFound", err)
	}

	if got := store.products[1].Quantity; got != 7 {
		t.Errorf("rollback failed: product 1 quantity = %d, want 7", got)
	}
	after, err := eng.GetSale(sale.ID)
	if err != nil {
		t.Fatalf("GetSale() error: %v", err)
	}
	if len(after.Items) != 1 || after.Items[0].ProductID != 1 || after.Items[0].Quantity != 3 {
		t.Errorf("rollback failed: items = %+v", after.Items)
	}
}

func TestLowStockNotification(t *testing.T) {
	store := newMemStore(steelBar(1, 7))
	eng := NewEngine(store)

	// Duplicate product lines are folded into one movement, so the check
	// fires once per product per operation.
	sale, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{
			{ProductID: 1, Quantity: 2, Price: 100},
			{ProductID: 1, Quantity: 1, Price: 100},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != 4 {
		t.Fatalf("quantity = %d, want 4", got)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("notification count = %d, want 1", len(store.notifications))
	}
	if store.notifications[0].Type != models.NotificationWarning {
		t.Errorf("notification type = %q, want WARNING", store.notifications[0].Type)
	}

	// Restoring stock on delete never notifies.
	if err := eng.DeleteSale(sale.ID); err != nil {
		t.Fatalf("DeleteSale() error: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Errorf("restore raised a notification: count = %d, want 1", len(store.notifications))
	}
}

func TestOversellIsAllowed(t *testing.T) {
	store := newMemStore(steelBar(1, 2))
	eng := NewEngine(store)

	_, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{{ProductID: 1, Quantity: 5, Price: 100}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	if got := store.products[1].Quantity; got != -3 {
		t.Errorf("quantity = %d, want -3 (oversell tolerated)", got)
	}
	if len(store.notifications) != 1 {
		t.Errorf("negative stock should still notify once, got %d", len(store.notifications))
	}
}

func TestConcurrentCreatesGetDistinctInvoiceNumbers(t *testing.T) {
	store := newMemStore(steelBar(1, 1000))
	eng := NewEngine(store)

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := eng.CreateSale(CreateSaleInput{
				Items: []Line{{ProductID: 1, Quantity: 1, Price: 10}},
			})
			if err != nil {
				t.Errorf("CreateSale() error: %v", err)
				return
			}
			numbers <- *sale.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("invoice number %d allocated twice", num)
		}
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Errorf("invoice number %d missing: allocation left a gap", i)
		}
	}
}

func TestGetSaleIsIdempotent(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	created, err := eng.CreateSale(CreateSaleInput{
		Items:    []Line{{ProductID: 1, Quantity: 3, Price: 33.33}},
		Discount: 10,
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}

	first, err := eng.GetSale(created.ID)
	if err != nil {
		t.Fatalf("GetSale() error: %v", err)
	}
	second, err := eng.GetSale(created.ID)
	if err != nil {
		t.Fatalf("GetSale() error: %v", err)
	}

	if !almostEqual(first.Total, second.Total) || len(first.Items) != len(second.Items) {
		t.Errorf("re-read differs: %+v vs %+v", first, second)
	}
	var sum float64
	for _, it := range first.Items {
		sum += it.Price * float64(it.Quantity)
	}
	if !almostEqual(roundTo2(sum), first.Total) {
		t.Errorf("sum of lines %v does not match total %v", sum, first.Total)
	}
}

func TestListRevisions(t *testing.T) {
	store := newMemStore(steelBar(1, 10))
	eng := NewEngine(store)

	sale, err := eng.CreateSale(CreateSaleInput{
		Items: []Line{{ProductID: 1, Quantity: 1, Price: 100}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error: %v", err)
	}
	discount := 0.0
	if _, err := eng.UpdateSale(sale.ID, UpdateSaleInput{
		Items:    []Line{{ProductID: 1, Quantity: 2, Price: 100}},
		Discount: &discount,
	}); err != nil {
		t.Fatalf("UpdateSale() error: %v", err)
	}

	revs, err := eng.ListRevisions(sale.ID)
	if err != nil {
		t.Fatalf("ListRevisions() error: %v", err)
	}
	if len(revs) != 2 || revs[0].VersionNo != 1 || revs[1].VersionNo != 2 {
		t.Errorf("revisions = %+v, want versions 1,2", revs)
	}

	if _, err := eng.ListRevisions(999); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("ListRevisions(missing) error = %v, want ErrSaleNotFound", err)
	}
}
