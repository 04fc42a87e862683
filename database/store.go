package database

import (
	"errors"

	"hadeed-backend/ledger"
	"hadeed-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceNumberLockKey serializes invoice number allocation across concurrent
// transactions (pg_advisory_xact_lock).
const invoiceNumberLockKey = 815001

// LedgerStore implements ledger.Store on top of GORM/Postgres.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Transact(fn func(tx ledger.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerStore{db: tx})
	})
}

func (s *LedgerStore) GetSale(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Preload("Items").Preload("Items.Product").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *LedgerStore) CreateSale(sale *models.Sale) error {
	return s.db.Create(sale).Error
}

func (s *LedgerStore) UpdateSale(id uint, fields map[string]any) error {
	res := s.db.Model(&models.Sale{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrSaleNotFound
	}
	return nil
}

func (s *LedgerStore) ReplaceSaleItems(saleID uint, items []models.SaleItem) error {
	if err := s.db.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	return s.db.Create(&items).Error
}

func (s *LedgerStore) DeleteSale(id uint) error {
	if err := s.db.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	res := s.db.Delete(&models.Sale{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrSaleNotFound
	}
	return nil
}

// NextInvoiceNumber allocates max+1 under a transaction-scoped advisory lock.
// The unique index on sales.invoice_number is the backstop. Must run inside
// Transact.
func (s *LedgerStore) NextInvoiceNumber() (int, error) {
	if err := s.db.Exec(`SELECT pg_advisory_xact_lock(?)`, invoiceNumberLockKey).Error; err != nil {
		return 0, err
	}
	var next int
	err := s.db.Raw(`SELECT COALESCE(MAX(invoice_number), 0) + 1 FROM sales`).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// AdjustProductQuantity applies the delta as a single atomic UPDATE and
// returns the resulting row. Negative results are allowed; oversell shows up
// as negative stock rather than failing the sale.
func (s *LedgerStore) AdjustProductQuantity(productID uint, delta int) (*models.Product, error) {
	var p models.Product
	res := s.db.Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ledger.ErrProductNotFound
	}
	return &p, nil
}

func (s *LedgerStore) AppendNotification(n *models.Notification) error {
	return s.db.Create(n).Error
}

func (s *LedgerStore) AppendRevision(saleID uint, snapshot []byte) error {
	var next int
	err := s.db.Raw(`SELECT COALESCE(MAX(version_no), 0) + 1 FROM sale_revisions WHERE sale_id = ?`, saleID).Scan(&next).Error
	if err != nil {
		return err
	}
	rev := models.SaleRevision{
		SaleID:    saleID,
		VersionNo: next,
		Snapshot:  datatypes.JSON(snapshot),
	}
	return s.db.Create(&rev).Error
}

func (s *LedgerStore) ListRevisions(saleID uint) ([]models.SaleRevision, error) {
	var revs []models.SaleRevision
	err := s.db.Where("sale_id = ?", saleID).Order("version_no ASC").Find(&revs).Error
	return revs, err
}
