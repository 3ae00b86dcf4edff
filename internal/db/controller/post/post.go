// Package post provides the admin views over community posts and comments.
package post

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
)

// Enriched is a post with counts computed from the related tables.
type Enriched struct {
	models.CommunityPost
	ActualCommentsCount int64           `json:"actual_comments_count"`
	ActualLikesCount    int64           `json:"actual_likes_count"`
	ReportsCount        int             `json:"reports_count"`
	Reports             []models.Report `json:"reports"`
}

// List returns posts newest first, optionally of one category, with counts
// and reports attached.
func List(db *gorm.DB, category string) ([]Enriched, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	q := db.Order("created_at DESC")
	if category != "" && category != "all" {
		q = q.Where("category = ?", category)
	}

	var posts []models.CommunityPost
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}

	return enrich(db, posts)
}

func enrich(db *gorm.DB, posts []models.CommunityPost) ([]Enriched, error) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	comments, err := controller.CountBy(db, &models.Comment{}, "post_id", ids, controller.NotDeleted)
	if err != nil {
		return nil, err
	}

	likes, err := controller.CountBy(db, &models.PostLike{}, "post_id", ids)
	if err != nil {
		return nil, err
	}

	reports := make(map[string][]models.Report)

	if len(ids) > 0 {
		var rows []models.Report
		if err = db.Where("target_type = ? AND target_id IN ?", models.TargetPost, ids).
			Order("created_at DESC").
			Find(&rows).Error; err != nil {
			return nil, err
		}

		for _, r := range rows {
			reports[r.TargetID] = append(reports[r.TargetID], r)
		}
	}

	out := make([]Enriched, 0, len(posts))

	for _, p := range posts {
		r := reports[p.ID]
		if r == nil {
			r = []models.Report{}
		}

		out = append(out, Enriched{
			CommunityPost:       p,
			ActualCommentsCount: comments[p.ID],
			ActualLikesCount:    likes[p.ID],
			ReportsCount:        len(r),
			Reports:             r,
		})
	}

	return out, nil
}

// CommentView is a comment with its author and reply count.
type CommentView struct {
	models.Comment
	RepliesCount int64           `json:"replies_count"`
	Author       *models.Profile `json:"author"`
}

// LikeView is a like with the liking profile.
type LikeView struct {
	models.PostLike
	User *models.Profile `json:"user"`
}

// Details is a post with its comments and likes.
type Details struct {
	Post     models.CommunityPost `json:"post"`
	Comments []CommentView        `json:"comments"`
	Likes    []LikeView           `json:"likes"`
}

// Get returns one post.
func Get(db *gorm.DB, id string) (*models.CommunityPost, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var p models.CommunityPost
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &p, nil
}

// GetDetails loads a post with comments (oldest first) and likes.
func GetDetails(db *gorm.DB, id string) (*Details, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err = db.Where("post_id = ? AND is_deleted = ?", id, false).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	var likes []models.PostLike
	if err = db.Where("post_id = ?", id).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}

	commentIDs := make([]string, 0, len(comments))
	userIDs := make([]string, 0, len(comments)+len(likes))

	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		userIDs = append(userIDs, c.UserID)
	}

	for _, l := range likes {
		userIDs = append(userIDs, l.UserID)
	}

	replies, err := controller.CountBy(db, &models.Comment{}, "parent_id", commentIDs, controller.NotDeleted)
	if err != nil {
		return nil, err
	}

	profiles, err := profile.ByIDs(db, userIDs)
	if err != nil {
		return nil, err
	}

	d := &Details{
		Post:     *p,
		Comments: make([]CommentView, 0, len(comments)),
		Likes:    make([]LikeView, 0, len(likes)),
	}

	for _, c := range comments {
		cv := CommentView{Comment: c, RepliesCount: replies[c.ID]}
		if a, ok := profiles[c.UserID]; ok {
			cv.Author = &a
		}

		d.Comments = append(d.Comments, cv)
	}

	for _, l := range likes {
		lv := LikeView{PostLike: l}
		if u, ok := profiles[l.UserID]; ok {
			lv.User = &u
		}

		d.Likes = append(d.Likes, lv)
	}

	return d, nil
}

// Delete removes a post with its comments, likes and reports.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}

		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id).Delete(&models.Report{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.CommunityPost{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// DeleteComment soft deletes a comment and keeps the post counter in sync.
func DeleteComment(db *gorm.DB, id string) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}

			return err
		}

		if err := tx.Model(&c).Update("is_deleted", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.CommunityPost{}).
			Where("id = ? AND comments_count > 0", c.PostID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	})
}
