package domain

import "time"

type Doubt struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AuthorID   string     `gorm:"size:32;index;not null" json:"author_id"`
	Question   string     `gorm:"not null" json:"question"`
	Resolved   bool       `gorm:"not null;default:false" json:"resolved"`
	ResolvedBy string     `gorm:"size:32" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
