package models

import "github.com/google/uuid"

type Section struct {
	Base
	Name       string    `gorm:"size:255;not null" json:"name"`
	WorkAreaID uuid.UUID `gorm:"type:uuid;index;not null" json:"work_area_id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"` // copied from the work area
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`

	// Relationships
	Tasks []Task `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Section) TableName() string {
	return "sections"
}
