package models

import "github.com/google/uuid"

type WorkArea struct {
	Base
	Name       string    `gorm:"size:255;not null" json:"name"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	Color      *string   `gorm:"size:7" json:"color"`
	IsDefault  bool      `gorm:"not null;default:false" json:"is_default"`

	// Relationships
	Sections []Section `gorm:"foreignKey:WorkAreaID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WorkArea) TableName() string {
	return "work_areas"
}
