package entity

import "time"

// User is a staff principal. Role drives the access-scope resolution for
// every operation.
type User struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	Name   string `json:"name" gorm:"size:100;not null"`
	Email  string `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Role   string `json:"role" gorm:"size:50;not null;index"`
	Active bool   `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Customer owns requirements and receives quotation/invoice documents.
type Customer struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:100;not null"`
	CompanyName string `json:"company_name" gorm:"size:200"`
	Email       string `json:"email" gorm:"size:100;not null"`
	Phone       string `json:"phone" gorm:"size:20"`

	CreatedBy string    `json:"created_by" gorm:"size:32;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BillingAddress *BillingAddress `json:"billing_address,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "customers"
}

// BillingAddress is the live billing record for a customer. Invoices copy it
// into their own snapshot at issue time.
type BillingAddress struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	CustomerID string `json:"customer_id" gorm:"size:32;uniqueIndex;not null"`
	Attention  string `json:"attention" gorm:"size:100"`
	Address    string `json:"address" gorm:"type:text"`
	City       string `json:"city" gorm:"size:100"`
	County     string `json:"county" gorm:"size:100"`
	PostCode   string `json:"post_code" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100"`
	Phone      string `json:"phone" gorm:"size:20"`
	Email      string `json:"email" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BillingAddress) TableName() string {
	return "customer_billing_addresses"
}
