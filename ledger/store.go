package ledger

import "hadeed-backend/models"

// Store is the persistence port of the ledger engine.
//
// Transact runs fn inside a single storage transaction; every call made on
// the Store handed to fn happens inside that transaction, and any returned
// error rolls the whole unit back. NextInvoiceNumber must be serialized
// against concurrent allocations, and AdjustProductQuantity must apply the
// delta as one atomic store operation, not read-modify-write.
type Store interface {
	Transact(fn func(tx Store) error) error

	GetSale(id uint) (*models.Sale, error)
	CreateSale(sale *models.Sale) error
	UpdateSale(id uint, fields map[string]any) error
	ReplaceSaleItems(saleID uint, items []models.SaleItem) error
	DeleteSale(id uint) error

	NextInvoiceNumber() (int, error)

	AdjustProductQuantity(productID uint, delta int) (*models.Product, error)

	AppendNotification(n *models.Notification) error
	AppendRevision(saleID uint, snapshot []byte) error
	ListRevisions(saleID uint) ([]models.SaleRevision, error)
}
