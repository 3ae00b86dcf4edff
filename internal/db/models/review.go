package models

// ReviewType identifies one of the three facility review tables.
type ReviewType string

// Review types.
const (
	ReviewPlayground   ReviewType = "playground"
	ReviewKindergarten ReviewType = "kindergarten"
	ReviewChildcare    ReviewType = "childcare"
)

// ReviewTypes lists every review type in display order.
var ReviewTypes = []ReviewType{ReviewPlayground, ReviewKindergarten, ReviewChildcare} //nolint:gochecknoglobals

// ReviewTable describes where a review type is stored.
type ReviewTable struct {
	Type           ReviewType
	Table          string
	ImageTable     string
	FacilityColumn string
	FacilityTable  string
	FacilityKey    string
	// Model and ImageModel return empty rows for model based statements.
	Model      func() interface{}
	ImageModel func() interface{}
}

// reviewTables maps a review type to its tables.
var reviewTables = map[ReviewType]ReviewTable{ //nolint:gochecknoglobals
	ReviewPlayground: {
		Type:           ReviewPlayground,
		Table:          "playground_reviews",
		ImageTable:     "playground_review_images",
		FacilityColumn: "playground_id",
		FacilityTable:  "playgrounds",
		FacilityKey:    "id",
		Model:          func() interface{} { return &PlaygroundReview{} },
		ImageModel:     func() interface{} { return &PlaygroundReviewImage{} },
	},
	ReviewKindergarten: {
		Type:           ReviewKindergarten,
		Table:          "kindergarten_reviews",
		ImageTable:     "kindergarten_review_images",
		FacilityColumn: "kindergarten_code",
		FacilityTable:  "kindergartens",
		FacilityKey:    "code",
		Model:          func() interface{} { return &KindergartenReview{} },
		ImageModel:     func() interface{} { return &KindergartenReviewImage{} },
	},
	ReviewChildcare: {
		Type:           ReviewChildcare,
		Table:          "childcare_reviews",
		ImageTable:     "childcare_review_images",
		FacilityColumn: "childcare_code",
		FacilityTable:  "childcare_centers",
		FacilityKey:    "code",
		Model:          func() interface{} { return &ChildcareReview{} },
		ImageModel:     func() interface{} { return &ChildcareReviewImage{} },
	},
}

// TableFor returns the storage description of a review type.
func TableFor(t ReviewType) (ReviewTable, bool) {
	rt, ok := reviewTables[t]
	return rt, ok
}

// ReviewFields are the columns shared by all review tables.
type ReviewFields struct {
	UserID       string  `gorm:"size:36;index" json:"user_id"`
	Rating       float64 `json:"rating"`
	Content      string  `json:"content"`
	HelpfulCount int     `json:"helpful_count"`
	IsHidden     bool    `json:"is_hidden"`
	IsDeleted    bool    `gorm:"index" json:"is_deleted"`
}

// PlaygroundReview is a review of a playground.
type PlaygroundReview struct {
	Base
	PlaygroundID string `gorm:"size:64;index" json:"playground_id"`
	ReviewFields
}

// KindergartenReview is a review of a kindergarten.
type KindergartenReview struct {
	Base
	KindergartenCode string `gorm:"size:64;index" json:"kindergarten_code"`
	ReviewFields
}

// ChildcareReview is a review of a childcare center.
type ChildcareReview struct {
	Base
	ChildcareCode string `gorm:"size:64;index" json:"childcare_code"`
	ReviewFields
}

// ReviewImageFields are the columns shared by all review image tables.
type ReviewImageFields struct {
	ReviewID   string `gorm:"size:36;index" json:"review_id"`
	ImageURL   string `json:"image_url"`
	ImageOrder int    `json:"image_order"`
}

// PlaygroundReviewImage is an image attached to a playground review.
type PlaygroundReviewImage struct {
	Base
	ReviewImageFields
}

// KindergartenReviewImage is an image attached to a kindergarten review.
type KindergartenReviewImage struct {
	Base
	ReviewImageFields
}

// ChildcareReviewImage is an image attached to a childcare review.
type ChildcareReviewImage struct {
	Base
	ReviewImageFields
}

// ReviewHelpful marks a review as helpful for a user.
type ReviewHelpful struct {
	Base
	ReviewType string `gorm:"size:20" json:"review_type"`
	ReviewID   string `gorm:"size:36;index" json:"review_id"`
	UserID     string `gorm:"size:36;index" json:"user_id"`
}

// Review delete request states.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// ReviewDeleteRequest is a facility owner's request to remove a review.
type ReviewDeleteRequest struct {
	Base
	ReviewID      string `gorm:"size:36;index" json:"review_id"`
	ReviewType    string `gorm:"size:20" json:"review_type"`
	RequesterID   string `gorm:"size:36;index" json:"requester_id"`
	RequestReason string `json:"request_reason"`
	Status        string `gorm:"size:20;index" json:"status"`
	AdminNotes    string `json:"admin_notes"`
}
