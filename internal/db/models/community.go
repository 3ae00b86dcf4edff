package models

import (
	"gorm.io/datatypes"
)

// CommunityPost is a post on the community board.
type CommunityPost struct {
	Base
	AuthorID      string                      `gorm:"size:36;index" json:"author_id"`
	AuthorName    string                      `gorm:"size:100" json:"author_name"`
	Category      string                      `gorm:"size:50;index" json:"category"`
	Content       string                      `json:"content"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CommentsCount int                         `json:"comments_count"`
	LikesCount    int                         `json:"likes_count"`
	IsDeleted     bool                        `gorm:"index" json:"is_deleted"`
}

// Comment is a comment or reply on a community post.
type Comment struct {
	Base
	PostID    string  `gorm:"size:36;index" json:"post_id"`
	ParentID  *string `gorm:"size:36;index" json:"parent_id"`
	UserID    string  `gorm:"size:36;index" json:"user_id"`
	Content   string  `json:"content"`
	IsDeleted bool    `gorm:"index" json:"is_deleted"`
}

// PostLike marks a post liked by a user.
type PostLike struct {
	Base
	PostID string `gorm:"size:36;index" json:"post_id"`
	UserID string `gorm:"size:36;index" json:"user_id"`
}

// Favorite is a facility bookmarked by a user.
type Favorite struct {
	Base
	UserID       string `gorm:"size:36;index" json:"user_id"`
	FacilityType string `gorm:"size:20" json:"facility_type"`
	FacilityID   string `gorm:"size:64" json:"facility_id"`
}
