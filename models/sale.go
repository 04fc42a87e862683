package models

import (
	"time"

	"gorm.io/datatypes"
)

type SaleStatus string

const (
	StatusQuotation SaleStatus = "QUOTATION"
	StatusPaid      SaleStatus = "PAID"
	StatusCredit    SaleStatus = "CREDIT"
	StatusDelivered SaleStatus = "DELIVERED"
)

// Committed reports whether stock has been decremented for a sale in this
// status. Quotations never touch stock; DELIVERED is handled by the
// fulfillment workflow, not by the ledger.
func (s SaleStatus) Committed() bool {
	return s == StatusPaid || s == StatusCredit
}

// Sale is an invoice, credit sale or quotation. Total is the authoritative
// post-discount amount and always equals the sum of Items price*quantity.
type Sale struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InvoiceNumber *int `json:"invoiceNumber" gorm:"uniqueIndex:idx_sales_invoice_number,where:invoice_number IS NOT NULL"`

	Customer string     `json:"customer"`
	Status   SaleStatus `json:"status" gorm:"type:VARCHAR(20);not null;default:PAID"`

	Items []SaleItem `json:"items" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`

	Total           float64 `json:"total" gorm:"type:numeric(12,2)"`
	Discount        float64 `json:"discount" gorm:"type:numeric(12,2)"`
	PaidAmount      float64 `json:"paidAmount" gorm:"type:numeric(12,2)"`
	RemainingAmount float64 `json:"remainingAmount" gorm:"type:numeric(12,2)"`

	CreatedAt time.Time `json:"createdAt"`
}

// SaleItem keeps the unit price as charged on this invoice, net of the
// proportional discount share. It survives later Product price changes.
type SaleItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	SaleID    uint    `json:"-" gorm:"index"`
	ProductID uint    `json:"productId" gorm:"not null;index"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"type:numeric(12,2)"`
}

// SaleRevision is an immutable snapshot of a sale, written on creation and on
// every full edit.
type SaleRevision struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SaleID    uint           `json:"sale_id" gorm:"index:idx_sale_revisions_sale_id_version_no,unique,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;index:idx_sale_revisions_sale_id_version_no,unique,priority:2"`
	Snapshot  datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
}
