package models

import "time"

// User is an operator account. Authentication itself lives outside this
// service; the record backs the session verifier and transition stamps.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Prenom    string `json:"prenom,omitempty"`
	Nom       string `json:"nom,omitempty"`
	Role      string `gorm:"size:30;default:'operator'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
