// Package user implements the admin views over app users: activity counts,
// their content and the cascading account removal.
package user

import (
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// Summary is a profile with its activity counts.
type Summary struct {
	models.Profile
	PostsCount    int64 `json:"posts_count"`
	CommentsCount int64 `json:"comments_count"`
}

// List returns every profile newest first with post and comment counts.
func List(db *gorm.DB) ([]Summary, error) {
	profiles, err := profile.List(db)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}

	posts, err := controller.CountBy(db, &models.CommunityPost{}, "author_id", ids, controller.NotDeleted)
	if err != nil {
		return nil, err
	}

	comments, err := controller.CountBy(db, &models.Comment{}, "user_id", ids, controller.NotDeleted)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Summary{
			Profile:       p,
			PostsCount:    posts[p.ID],
			CommentsCount: comments[p.ID],
		})
	}

	return out, nil
}

// Posts lists the posts of a user, newest first.
func Posts(db *gorm.DB, userID string) ([]models.CommunityPost, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	posts := make([]models.CommunityPost, 0)
	err := db.Where("author_id = ?", userID).Order("created_at DESC").Find(&posts).Error

	return posts, err
}

// Comments lists the comments of a user, newest first.
func Comments(db *gorm.DB, userID string) ([]models.Comment, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	comments := make([]models.Comment, 0)
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&comments).Error

	return comments, err
}

// StepResult is the outcome of one cascade step.
type StepResult struct {
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type step struct {
	name string
	run  func(tx *gorm.DB, p *models.Profile) *gorm.DB
}

func byUser(model interface{}, column string) func(tx *gorm.DB, p *models.Profile) *gorm.DB {
	return func(tx *gorm.DB, p *models.Profile) *gorm.DB {
		return tx.Where(column+" = ?", p.ID).Delete(model)
	}
}

// reviewImages deletes the images of the reviews a user wrote.
func reviewImages(t models.ReviewTable) func(tx *gorm.DB, p *models.Profile) *gorm.DB {
	return func(tx *gorm.DB, p *models.Profile) *gorm.DB {
		sub := tx.Table(t.Table).Select("id").Where("user_id = ?", p.ID)
		return tx.Where("review_id IN (?)", sub).Delete(t.ImageModel())
	}
}

func reviews(t models.ReviewTable) func(tx *gorm.DB, p *models.Profile) *gorm.DB {
	return func(tx *gorm.DB, p *models.Profile) *gorm.DB {
		return tx.Where("user_id = ?", p.ID).Delete(t.Model())
	}
}

func cascade() []step {
	pg, _ := models.TableFor(models.ReviewPlayground)
	kg, _ := models.TableFor(models.ReviewKindergarten)
	cc, _ := models.TableFor(models.ReviewChildcare)

	return []step{
		{"comments", byUser(&models.Comment{}, "user_id")},
		{"post_likes", byUser(&models.PostLike{}, "user_id")},
		{"community_posts", byUser(&models.CommunityPost{}, "author_id")},
		{pg.ImageTable, reviewImages(pg)},
		{pg.Table, reviews(pg)},
		{kg.ImageTable, reviewImages(kg)},
		{kg.Table, reviews(kg)},
		{cc.ImageTable, reviewImages(cc)},
		{cc.Table, reviews(cc)},
		{"review_helpfuls", byUser(&models.ReviewHelpful{}, "user_id")},
		{"review_delete_requests", byUser(&models.ReviewDeleteRequest{}, "requester_id")},
		{"favorites", byUser(&models.Favorite{}, "user_id")},
		{"notifications", byUser(&models.Notification{}, "to_user_id")},
		{"notification_settings", byUser(&models.NotificationSetting{}, "user_id")},
		{"fcm_tokens", byUser(&models.FCMToken{}, "user_id")},
		{"reports", byUser(&models.Report{}, "reporter_id")},
	}
}

// Delete removes a user and everything the user created. Every step runs even
// if an earlier one failed and reports its own outcome; the profile itself is
// removed last and its failure is returned as error.
func Delete(db *gorm.DB, id string) (*models.Profile, map[string]StepResult, error) {
	p, err := profile.Get(db, id)
	if err != nil {
		return nil, nil, err
	}

	results := make(map[string]StepResult)

	for _, s := range cascade() {
		res := s.run(db, p)
		if res.Error != nil {
			results[s.name] = StepResult{Error: res.Error.Error()}
			continue
		}

		results[s.name] = StepResult{Deleted: res.RowsAffected}
	}

	res := db.Where("id = ?", p.ID).Delete(&models.Profile{})
	if res.Error != nil {
		results["profiles"] = StepResult{Error: res.Error.Error()}
		return p, results, res.Error
	}

	results["profiles"] = StepResult{Deleted: res.RowsAffected}

	return p, results, nil
}
