// Package stats computes the dashboard counters.
package stats

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/report"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// Counts are the dashboard counters.
type Counts struct {
	Users                 int64            `json:"users"`
	ActiveUsers           int64            `json:"active_users"`
	Posts                 int64            `json:"posts"`
	Comments              int64            `json:"comments"`
	Reviews               map[string]int64 `json:"reviews"`
	TotalReviews          int64            `json:"total_reviews"`
	PendingReports        int64            `json:"pending_reports"`
	PendingDeleteRequests int64            `json:"pending_delete_requests"`
	PendingScheduled      int64            `json:"pending_scheduled"`
	ActiveBanners         int64            `json:"active_banners"`
}

type counter struct {
	name  string
	model interface{}
	query string
	args  []interface{}
	dst   *int64
}

// Dashboard counts users, content and pending work.
func Dashboard(db *gorm.DB) (*Counts, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	c := &Counts{Reviews: make(map[string]int64, len(models.ReviewTypes))}

	counters := []counter{
		{"profiles", &models.Profile{}, "", nil, &c.Users},
		{"active profiles", &models.Profile{}, "is_active = ?", []interface{}{true}, &c.ActiveUsers},
		{"posts", &models.CommunityPost{}, "is_deleted = ?", []interface{}{false}, &c.Posts},
		{"comments", &models.Comment{}, "is_deleted = ?", []interface{}{false}, &c.Comments},
		{"delete requests", &models.ReviewDeleteRequest{}, "status = ?", []interface{}{models.RequestPending}, &c.PendingDeleteRequests},
		{"scheduled", &models.ScheduledNotification{}, "status = ?", []interface{}{models.ScheduledPending}, &c.PendingScheduled},
		{"banners", &models.AdBanner{}, "is_active = ?", []interface{}{true}, &c.ActiveBanners},
	}

	for _, ct := range counters {
		q := db.Model(ct.model)
		if ct.query != "" {
			q = q.Where(ct.query, ct.args...)
		}

		if err := q.Count(ct.dst).Error; err != nil {
			return nil, errors.Wrapf(err, "count %s", ct.name)
		}
	}

	for _, t := range models.ReviewTypes {
		rt, _ := models.TableFor(t)

		var n int64
		if err := db.Model(rt.Model()).Where("is_deleted = ?", false).Count(&n).Error; err != nil {
			return nil, errors.Wrapf(err, "count %s", rt.Table)
		}

		c.Reviews[string(t)] = n
		c.TotalReviews += n
	}

	pending, err := report.PendingCount(db)
	if err != nil {
		return nil, errors.Wrap(err, "count reports")
	}

	c.PendingReports = pending

	return c, nil
}
