package models

import "time"

// InterventionStatus represents the lifecycle of a field job.
type InterventionStatus string

const (
	InterventionScheduled  InterventionStatus = "scheduled"
	InterventionInProgress InterventionStatus = "in_progress"
	InterventionCompleted  InterventionStatus = "completed"
	InterventionCancelled  InterventionStatus = "cancelled"
)

// Intervention is a scheduled/completed field-service job, the billable unit
// of work. Created by scheduling/import flows; once completed it becomes the
// immutable input to invoicing.
type Intervention struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Reference   string             `gorm:"size:50;index" json:"reference"`
	Status      InterventionStatus `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	ScheduledAt time.Time          `json:"scheduled_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Billing inputs captured by field staff during execution.
	LaborHours float64 `gorm:"type:decimal(6,2)" json:"labor_hours"`
	LaborRate  float64 `gorm:"type:decimal(10,2)" json:"labor_rate"`
	TravelFee  float64 `gorm:"type:decimal(10,2)" json:"travel_fee"`

	Description string `gorm:"type:text" json:"description,omitempty"`

	Items []InterventionItem `gorm:"foreignKey:InterventionID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the job is finished and billable.
func (iv *Intervention) IsCompleted() bool { return iv.Status == InterventionCompleted }

// InterventionItem is a product or material used during the job.
type InterventionItem struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	InterventionID uint    `gorm:"index;not null" json:"intervention_id"`
	ProductName    string  `gorm:"size:200;not null" json:"product_name"`
	Quantity       float64 `gorm:"type:decimal(10,3);not null;default:1" json:"quantity"`
	UnitPrice      float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	// TaxRate is a percentage (e.g. 20, 10, 5.5). Zero means "not recorded":
	// the invoice builder substitutes the company default.
	TaxRate   float64   `gorm:"type:decimal(5,2)" json:"tax_rate"`
	CreatedAt time.Time `json:"created_at"`
}
