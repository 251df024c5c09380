package entity

import "time"

// Requirement is a confirmed Fire Risk Assessment raised against a customer
// property. UPRN and RBNO identify the property and are unique across all
// requirements.
type Requirement struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	CustomerID  string `json:"customer_id" gorm:"size:32;not null;index"`
	UPRN        string `json:"uprn" gorm:"column:uprn;size:50;uniqueIndex;not null"`
	RBNO        string `json:"rbno" gorm:"column:rbno;size:50;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Action      string `json:"action" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:30;default:active"`

	// Assignments. Both must be set before a submitted report notifies the
	// customer.
	SurveyorID         *string `json:"surveyor_id" gorm:"size:32"`
	QuantitySurveyorID *string `json:"quantity_surveyor_id" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Defects  []RequirementDefect `json:"defects,omitempty" gorm:"foreignKey:RequirementID"`
	Images   []RequirementImage  `json:"images,omitempty" gorm:"foreignKey:RequirementID"`
	Customer *Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Requirement) TableName() string {
	return "fra_requirements"
}

// Requirement statuses
const (
	RequirementStatusActive     = "active"
	RequirementStatusToSurveyor = "to-surveyor"
	RequirementStatusAssigned   = "assigned-to-surveyor"
)

// RequirementDefect is a remediation action item on a requirement. A defect
// belongs to exactly one requirement for its whole life.
type RequirementDefect struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequirementID string `json:"requirement_id" gorm:"size:32;not null;index"`
	Action        string `json:"action" gorm:"type:text;not null"`
	Description   string `json:"description" gorm:"type:text"`
	Rectification string `json:"rectification" gorm:"type:text"`
	Status        string `json:"status" gorm:"size:20;default:pending"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RequirementDefect) TableName() string {
	return "fra_requirement_defects"
}

// Defect statuses
const (
	DefectStatusPending    = "pending"
	DefectStatusInProgress = "in-progress"
	DefectStatusExecuted   = "executed"
)

// RequirementImage is a site photo uploaded against a requirement. Path is
// the artifact-store object key.
type RequirementImage struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	RequirementID string    `json:"requirement_id" gorm:"size:32;not null;index"`
	Path          string    `json:"path" gorm:"size:500;not null"`
	Caption       string    `json:"caption" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`
}

func (RequirementImage) TableName() string {
	return "fra_requirement_images"
}
