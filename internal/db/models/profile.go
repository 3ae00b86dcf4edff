package models

// Profile is an app user account.
type Profile struct {
	Base
	AuthUserID      string `gorm:"size:36;index" json:"auth_user_id"`
	UserType        string `gorm:"size:20" json:"user_type"`
	FullName        string `gorm:"size:100" json:"full_name"`
	Nickname        string `gorm:"size:100" json:"nickname"`
	Email           string `gorm:"size:255;index" json:"email"`
	Phone           string `gorm:"size:32;index" json:"phone"`
	ProfileImageURL string `json:"profile_image_url"`
	IsActive        bool   `gorm:"index" json:"is_active"`
}

// DisplayName returns the nickname, falling back to the full name.
func (p *Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}

	return p.FullName
}

// StorageFolder is the object storage prefix holding the profile images.
func (p *Profile) StorageFolder() string {
	if p.AuthUserID != "" {
		return p.AuthUserID
	}

	return p.ID
}
