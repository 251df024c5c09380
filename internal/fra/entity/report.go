package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Report covers a chosen subset of a requirement's defects. Submission
// renders the report PDF and freezes the report; submitted reports are
// immutable.
type Report struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequirementID string `json:"requirement_id" gorm:"size:32;not null;index"`

	// DefectIDs is the selected defect subset, stored as a JSON array of ids.
	DefectIDs datatypes.JSON `json:"defect_ids" gorm:"type:json"`

	Status        string `json:"status" gorm:"size:20;default:draft"`
	SignaturePath string `json:"signature_path" gorm:"size:500"`
	PDFPath       string `json:"pdf_path" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "fra_reports"
}

// Report statuses
const (
	ReportStatusDraft  = "draft"
	ReportStatusSubmit = "submit"
)
