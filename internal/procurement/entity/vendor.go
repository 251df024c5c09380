package entity

import "time"

// Vendor is a supplier purchase orders are raised against.
type Vendor struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Email       string `json:"email" gorm:"size:100"`
	Phone       string `json:"phone" gorm:"size:20"`
	Address     string `json:"address" gorm:"type:text"`
	TaxNumber   string `json:"tax_number" gorm:"size:50"`
	ContactName string `json:"contact_name" gorm:"size:100"`
	Active      bool   `json:"active" gorm:"default:true"`

	CreatedBy string    `json:"created_by" gorm:"size:32;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vendor) TableName() string {
	return "proc_vendors"
}

// InventoryLocation is a receiving destination for purchased stock.
type InventoryLocation struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Address     string `json:"address" gorm:"type:text"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	CreatedBy string    `json:"created_by" gorm:"size:32;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryLocation) TableName() string {
	return "proc_inventory_locations"
}
