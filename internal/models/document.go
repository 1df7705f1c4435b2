package models

import "time"

// Document references a file produced for an entity, e.g. the PDF stored for
// a dispatched invoice.
type Document struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OwnerType string `gorm:"size:50;index" json:"owner_type"` // ex: "Invoice"
	OwnerID   uint   `gorm:"index" json:"owner_id"`
	Name      string `gorm:"size:200" json:"name"`
	Path      string `gorm:"size:500" json:"path"`
	MimeType  string `gorm:"size:100" json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditLog traces who changed what. Written on invoice transitions and
// dispatches.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `json:"user_id"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Action     string    `gorm:"size:50" json:"action"`
	Detail     string    `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
