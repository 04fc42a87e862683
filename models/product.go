package models

import "time"

type Category struct {
	Id   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;unique"`
}

// Product is a sellable steel item. Quantity is the authoritative on-hand
// stock count and is adjusted by the ledger engine as sales commit.
type Product struct {
	Id            uint     `json:"id" gorm:"primaryKey"`
	Name          string   `json:"name" gorm:"not null"`
	Type          string   `json:"type"`
	Price         float64  `json:"price" gorm:"type:numeric(12,2)"`
	Quantity      int      `json:"quantity" gorm:"not null;default:0"`
	Length        float64  `json:"length"`
	Width         float64  `json:"width"`
	Thickness     float64  `json:"thickness"`
	WeightPerUnit float64  `json:"weightPerUnit"`
	CategoryId    uint     `json:"categoryId"`
	Category      Category `json:"category" gorm:"foreignKey:CategoryId;references:Id"`

	CreatedAt time.Time `json:"created_at"`
}
