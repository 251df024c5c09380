package entity

import "time"

// STW is a pre-survey work item, a lightweight precursor later convertible
// into a full requirement. It carries its own UPRN/RBNO uniqueness, separate
// from the requirement table.
type STW struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	CustomerID  string `json:"customer_id" gorm:"size:32;not null;index"`
	UPRN        string `json:"uprn" gorm:"column:uprn;size:50;uniqueIndex;not null"`
	RBNO        string `json:"rbno" gorm:"column:rbno;size:50;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Action      string `json:"action" gorm:"type:text"`

	// JobID is set once downstream work is scheduled against the STW. A
	// linked STW can no longer be converted.
	JobID *string `json:"job_id" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Defects []STWDefect `json:"defects,omitempty" gorm:"foreignKey:STWID"`
}

func (STW) TableName() string {
	return "fra_stws"
}

// STWDefect mirrors RequirementDefect on the pre-survey side.
type STWDefect struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	STWID         string `json:"stw_id" gorm:"size:32;not null;index"`
	Action        string `json:"action" gorm:"type:text;not null"`
	Description   string `json:"description" gorm:"type:text"`
	Rectification string `json:"rectification" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (STWDefect) TableName() string {
	return "fra_stw_defects"
}
