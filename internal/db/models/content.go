package models

import "time"

// Banner types.
const (
	BannerSplash = "splash"
	BannerModal  = "modal"
	BannerMain   = "main"
)

// AdBanner is an advertisement banner shown in the app.
type AdBanner struct {
	Base
	BannerType    string     `gorm:"size:20;index" json:"banner_type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	LinkURL       string     `json:"link_url"`
	OrderIndex    int        `json:"order_index"`
	IsActive      bool       `json:"is_active"`
	ShowClickText bool       `json:"show_click_text"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// Term is one version of a terms document.
type Term struct {
	Base
	Category string `gorm:"size:50;index" json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Version  int    `json:"version"`
	IsActive bool   `json:"is_active"`
}

// AppSetting is a key value setting read by the app.
type AppSetting struct {
	Base
	Key         string   `gorm:"column:setting_key;size:100;uniqueIndex;not null" json:"key"`
	Value       JSONText `json:"value"`
	Description string   `json:"description"`
}

// Report target types.
const (
	TargetPost        = "post"
	TargetComment     = "comment"
	TargetProfile     = "profile"
	TargetReview      = "review"
	TargetReviewImage = "review_image"
	TargetMealImage   = "meal_image"
)

// Report is a user report about content or another user.
type Report struct {
	Base
	ReporterID   string  `gorm:"size:36;index" json:"reporter_id"`
	TargetType   string  `gorm:"size:20;index" json:"target_type"`
	TargetID     string  `gorm:"size:64;index" json:"target_id"`
	PostID       *string `gorm:"size:36;index" json:"post_id"`
	FacilityType string  `gorm:"size:20" json:"facility_type"`
	Reason       string  `json:"reason"`
	Status       string  `gorm:"size:20" json:"status"`
}
