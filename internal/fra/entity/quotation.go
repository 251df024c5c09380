package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Quotation prices a report's defect subset against the rate catalog. The
// priced structure lives in Snapshot and is recomputed wholesale on every
// save; once a PDF has been generated the snapshot is immutable history and
// later catalog price changes never alter it.
type Quotation struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequirementID string `json:"requirement_id" gorm:"size:32;not null;index"`
	ReportID      string `json:"report_id" gorm:"size:32;not null;index"`

	// Snapshot preserves the stored wire shape:
	// {status, defectRateValues: {defectId: {slot: {catalogId, price,
	// quantity, totalPrice, catalogSnapshot}}}, defectList: [defectId,...]}
	Snapshot datatypes.JSON `json:"snapshot" gorm:"type:json"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	Status      string          `json:"status" gorm:"size:30;default:draft"`
	PDFPath     string          `json:"pdf_path" gorm:"size:500"`

	// Version implements optimistic locking; concurrent saves of a stale
	// read fail instead of last-write-wins.
	Version int `json:"version" gorm:"default:1"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quotation) TableName() string {
	return "fra_quotations"
}

// Quotation statuses. The engine drives the runtime flow
// draft -> quoted -> awaiting-approval -> to-commence | rejected.
// The legacy declared tokens remain defined for stored-data compatibility
// and are accepted on read only.
const (
	QuotationStatusDraft            = "draft"
	QuotationStatusQuoted           = "quoted"
	QuotationStatusAwaitingApproval = "awaiting-approval"
	QuotationStatusToCommence       = "to-commence"
	QuotationStatusRejected         = "rejected"

	// Legacy declared tokens.
	QuotationStatusSubmitted       = "submitted"
	QuotationStatusSendForApproval = "send_for_approval"
	QuotationStatusApproved        = "approved"
)

// RateSelection is one catalog selection slot for a defect inside the
// quotation snapshot. Price is the unit price at save time, re-derived from
// the authoritative catalog.
type RateSelection struct {
	CatalogID       string          `json:"catalogId"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CatalogSnapshot CatalogSnapshot `json:"catalogSnapshot"`
}

// CatalogSnapshot freezes the catalog row a selection was priced from.
type CatalogSnapshot struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
}

// QuotationSnapshot is the typed form of Quotation.Snapshot.
type QuotationSnapshot struct {
	Status           string                              `json:"status"`
	DefectRateValues map[string]map[string]RateSelection `json:"defectRateValues"`
	DefectList       []string                            `json:"defectList"`
}
