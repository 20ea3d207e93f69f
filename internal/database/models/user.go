package models

type User struct {
	Base
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash *string `json:"-"` // nil for accounts created through Google
	GoogleID     *string `gorm:"size:255;uniqueIndex" json:"-"`
	FullName     string  `gorm:"size:255" json:"full_name"`
	AvatarURL    string  `json:"avatar_url"`

	// Relationships
	Sessions  []Session  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WorkAreas []WorkArea `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
