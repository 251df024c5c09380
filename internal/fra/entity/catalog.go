package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateCatalogItem is a priced SOR (schedule of rates) entry used to cost
// defect remediation. Quotation saves always price from the current catalog
// row, never from caller-supplied values.
type RateCatalogItem struct {
	ID          string          `json:"id" gorm:"primaryKey;size:32"`
	Code        string          `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Unit        string          `json:"unit" gorm:"size:20;default:each"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Active      bool            `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RateCatalogItem) TableName() string {
	return "fra_rate_catalog_items"
}
