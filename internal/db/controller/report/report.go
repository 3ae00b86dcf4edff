// Package report lists user reports with the reported content resolved.
package report

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/controller/review"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Target is the reported content. Only the field matching the report's
// target type is set, and none when the content is gone.
type Target struct {
	Post    *models.CommunityPost `json:"post,omitempty"`
	Comment *models.Comment       `json:"comment,omitempty"`
	Profile *models.Profile       `json:"profile,omitempty"`
	Review  *review.Row           `json:"review,omitempty"`
	Author  *models.Profile       `json:"author,omitempty"`
}

// Enriched is a report with reporter and target.
type Enriched struct {
	models.Report
	Reporter *models.Profile `json:"reporter"`
	Target   Target          `json:"target"`
}

// List returns every report newest first.
func List(db *gorm.DB) ([]Enriched, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var reports []models.Report
	if err := db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}

	return enrich(db, reports)
}

type resolver struct {
	posts    map[string]models.CommunityPost
	comments map[string]models.Comment
	reviews  map[string]review.Row
	profiles map[string]models.Profile
}

func idsOf(reports []models.Report, targetType string) []string {
	ids := make([]string, 0)

	for _, r := range reports {
		if r.TargetType == targetType {
			ids = append(ids, r.TargetID)
		}
	}

	return controller.Unique(ids)
}

func load(db *gorm.DB, reports []models.Report) (*resolver, error) {
	res := &resolver{
		posts:    make(map[string]models.CommunityPost),
		comments: make(map[string]models.Comment),
		reviews:  make(map[string]review.Row),
	}

	if ids := idsOf(reports, models.TargetPost); len(ids) > 0 {
		var posts []models.CommunityPost
		if err := db.Where("id IN ?", ids).Find(&posts).Error; err != nil {
			return nil, err
		}

		for _, p := range posts {
			res.posts[p.ID] = p
		}
	}

	if ids := idsOf(reports, models.TargetComment); len(ids) > 0 {
		var comments []models.Comment
		if err := db.Where("id IN ?", ids).Find(&comments).Error; err != nil {
			return nil, err
		}

		for _, c := range comments {
			res.comments[c.ID] = c
		}
	}

	byType := make(map[string][]string)

	for _, r := range reports {
		if r.TargetType == models.TargetReview {
			byType[r.FacilityType] = append(byType[r.FacilityType], r.TargetID)
		}
	}

	for kind, ids := range byType {
		for _, id := range controller.Unique(ids) {
			row, err := review.Get(db, models.ReviewType(kind), id)
			if errors.Is(err, review.ErrNotFound) || errors.Is(err, review.ErrUnknownType) {
				continue
			}

			if err != nil {
				return nil, err
			}

			res.reviews[kind+"/"+id] = *row
		}
	}

	profileIDs := idsOf(reports, models.TargetProfile)
	for _, r := range reports {
		profileIDs = append(profileIDs, r.ReporterID)
	}

	for _, p := range res.posts {
		profileIDs = append(profileIDs, p.AuthorID)
	}

	for _, c := range res.comments {
		profileIDs = append(profileIDs, c.UserID)
	}

	var err error
	if res.profiles, err = profile.ByIDs(db, profileIDs); err != nil {
		return nil, err
	}

	return res, nil
}

func (res *resolver) profile(id string) *models.Profile {
	if p, ok := res.profiles[id]; ok {
		return &p
	}

	return nil
}

func (res *resolver) target(r models.Report) Target {
	var t Target

	switch r.TargetType {
	case models.TargetPost:
		if p, ok := res.posts[r.TargetID]; ok {
			t.Post = &p
			t.Author = res.profile(p.AuthorID)
		}
	case models.TargetComment:
		if c, ok := res.comments[r.TargetID]; ok {
			t.Comment = &c
			t.Author = res.profile(c.UserID)
		}
	case models.TargetProfile:
		t.Profile = res.profile(r.TargetID)
	case models.TargetReview:
		if row, ok := res.reviews[r.FacilityType+"/"+r.TargetID]; ok {
			t.Review = &row
			t.Author = res.profile(row.UserID)
		}
	}

	return t
}

func enrich(db *gorm.DB, reports []models.Report) ([]Enriched, error) {
	res, err := load(db, reports)
	if err != nil {
		return nil, err
	}

	out := make([]Enriched, 0, len(reports))

	for _, r := range reports {
		out = append(out, Enriched{
			Report:   r,
			Reporter: res.profile(r.ReporterID),
			Target:   res.target(r),
		})
	}

	return out, nil
}

// PendingCount counts the reports that have not been handled.
func PendingCount(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	var n int64
	err := db.Model(&models.Report{}).Where("status = ? OR status = ''", "pending").Count(&n).Error

	return n, err
}

// Delete removes a report.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return controller.ErrDBNil
	}

	res := db.Where("id = ?", id).Delete(&models.Report{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
