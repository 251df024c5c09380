package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is a vendor order header with its line items. Receiving
// happens per line across multiple events; the ledger rows keep the full
// history rather than a single running counter.
type PurchaseOrder struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	POCode     string `json:"po_code" gorm:"size:32;uniqueIndex;not null"`
	VendorID   string `json:"vendor_id" gorm:"size:32;not null;index"`
	LocationID string `json:"location_id" gorm:"size:32;not null;index"`
	Status     string `json:"status" gorm:"size:30;default:pending"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(15,2)"`
	Notes       string          `json:"notes" gorm:"type:text"`

	CreatedBy  string     `json:"created_by" gorm:"size:32;not null;index"`
	ApprovedBy *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Items    []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:POID"`
	Vendor   *Vendor             `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Location *InventoryLocation  `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (PurchaseOrder) TableName() string {
	return "proc_purchase_orders"
}

// Purchase order statuses
const (
	POStatusPending         = "pending"
	POStatusSentForApproval = "sent_for_approval"
	POStatusApproved        = "approved"
	POStatusRejected        = "rejected"
)

// PurchaseOrderItem is one ordered line. Quantity is the ordered quantity
// the receipt guard checks cumulative receipts against.
type PurchaseOrderItem struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	POID        string `json:"po_id" gorm:"size:32;not null;index"`
	ItemName    string `json:"item_name" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`

	Quantity   decimal.Decimal `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit       string          `json:"unit" gorm:"size:20;default:each"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(15,2)"`

	// Version implements optimistic locking on line edits.
	Version int `json:"version" gorm:"default:1"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrderItem) TableName() string {
	return "proc_purchase_order_items"
}

// PurchaseOrderInvoice is one receiving event against a PO, identified by
// the vendor's invoice number. The number is unique across all vendors.
type PurchaseOrderInvoice struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	POID          string     `json:"po_id" gorm:"size:32;not null;index"`
	InvoiceNumber string     `json:"invoice_number" gorm:"size:100;uniqueIndex;not null"`
	ReceivedAt    *time.Time `json:"received_at"`
	Notes         string     `json:"notes" gorm:"type:text"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rows []PurchaseOrderReceivedInventory `json:"rows,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (PurchaseOrderInvoice) TableName() string {
	return "proc_purchase_order_invoices"
}

// PurchaseOrderReceivedInventory records the quantity of one ordered line
// received in one event.
type PurchaseOrderReceivedInventory struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	InvoiceID string          `json:"invoice_id" gorm:"size:32;not null;index"`
	POItemID  string          `json:"po_item_id" gorm:"size:32;not null;index"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrderReceivedInventory) TableName() string {
	return "proc_po_received_inventory"
}

// poTransitions is the purchase order status machine.
var poTransitions = map[string][]string{
	POStatusPending:         {POStatusSentForApproval},
	POStatusSentForApproval: {POStatusApproved, POStatusRejected},
	POStatusApproved:        {},
	POStatusRejected:        {},
}

// POCanTransition reports whether a purchase order may move between the two
// statuses.
func POCanTransition(from, to string) bool {
	for _, next := range poTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
