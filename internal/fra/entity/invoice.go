package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is an immutable billing snapshot derived from an approved
// quotation. The billing address is denormalized into BillingSnapshot at
// issue time so later customer edits never retroactively change issued
// invoices.
type Invoice struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequirementID string `json:"requirement_id" gorm:"size:32;not null;index"`
	ReportID      string `json:"report_id" gorm:"size:32;not null;index"`
	QuotationID   string `json:"quotation_id" gorm:"size:32;not null;index"`

	Snapshot        datatypes.JSON `json:"snapshot" gorm:"type:json"`
	BillingSnapshot datatypes.JSON `json:"billing_snapshot" gorm:"type:json"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	Status      string          `json:"status" gorm:"size:30;default:draft"`
	PDFPath     string          `json:"pdf_path" gorm:"size:500"`

	// ContentHash short-circuits regeneration: identical rendered content
	// skips the re-upload.
	ContentHash string     `json:"content_hash" gorm:"size:64"`
	SubmittedAt *time.Time `json:"submitted_at"`

	Version int `json:"version" gorm:"default:1"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "fra_invoices"
}

// Invoice statuses
const (
	InvoiceStatusDraft          = "draft"
	InvoiceStatusSubmitted      = "submitted"
	InvoiceStatusSentToCustomer = "sent_to_customer"
	InvoiceStatusPaid           = "paid"
)

// InvoiceLine is one priced line inside Invoice.Snapshot.
type InvoiceLine struct {
	DefectID     string          `json:"defectId"`
	DefectAction string          `json:"defectAction"`
	CatalogID    string          `json:"catalogId"`
	CatalogCode  string          `json:"catalogCode"`
	UnitPrice    decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// InvoiceBilling is the typed form of Invoice.BillingSnapshot.
type InvoiceBilling struct {
	CompanyName string `json:"companyName"`
	Attention   string `json:"attention"`
	Address     string `json:"address"`
	City        string `json:"city"`
	County      string `json:"county"`
	PostCode    string `json:"postCode"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}
