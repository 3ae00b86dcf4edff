// Package review reads the three facility review tables as one list and
// applies the admin moderation actions to them.
package review

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/models"
)

const (
	// TypeAll selects every review type.
	TypeAll = "all"

	// DefaultLimit is the page size when none is given.
	DefaultLimit = 20
	maxLimit     = 100

	// DailyDays is the number of days reported by Daily.
	DailyDays = 7
)

var (
	// ErrNotFound is returned when a review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrUnknownType is returned for an unknown review type.
	ErrUnknownType = errors.New("unknown review type")
)

// Image is a review image.
type Image struct {
	ID         string `json:"id"`
	ReviewID   string `json:"-"`
	ImageURL   string `json:"image_url"`
	ImageOrder int    `json:"image_order"`
}

// Row is a review of any type in one shape. Fields tagged gorm:"-" are
// filled by Enrich.
type Row struct {
	ID           string    `json:"id"`
	ReviewType   string    `gorm:"-" json:"review_type"`
	FacilityID   string    `json:"facility_id"`
	FacilityName string    `gorm:"-" json:"facility_name"`
	UserID       string    `json:"user_id"`
	UserName     string    `gorm:"-" json:"user_name"`
	UserEmail    string    `gorm:"-" json:"user_email"`
	Rating       float64   `json:"rating"`
	Content      string    `json:"content"`
	HelpfulCount int       `json:"helpful_count"`
	IsHidden     bool      `json:"is_hidden"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	Images       []Image   `gorm:"-" json:"images"`
}

// Query selects a page of reviews.
type Query struct {
	Type   string
	Search string
	Page   int
	Limit  int
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Tables resolves "all" or one type name into review tables.
func Tables(kind string) ([]models.ReviewTable, error) {
	if kind == "" || kind == TypeAll {
		out := make([]models.ReviewTable, 0, len(models.ReviewTypes))

		for _, t := range models.ReviewTypes {
			rt, _ := models.TableFor(t)
			out = append(out, rt)
		}

		return out, nil
	}

	rt, ok := models.TableFor(models.ReviewType(kind))
	if !ok {
		return nil, ErrUnknownType
	}

	return []models.ReviewTable{rt}, nil
}

func selectColumns(t models.ReviewTable) string {
	return "id, " + t.FacilityColumn + " AS facility_id, user_id, rating, content, helpful_count, is_hidden, is_deleted, created_at"
}

// load reads non deleted reviews of one table. scope narrows the rows.
func load(db *gorm.DB, t models.ReviewTable, scope func(*gorm.DB) *gorm.DB) ([]Row, error) {
	rows := make([]Row, 0)

	q := db.Table(t.Table).Select(selectColumns(t)).Where("is_deleted = ?", false)
	if scope != nil {
		q = scope(q)
	}

	if err := q.Order("created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].ReviewType = string(t.Type)
	}

	return rows, nil
}

// searchScope matches content, author name or facility name.
func searchScope(db *gorm.DB, t models.ReviewTable, search string) (func(*gorm.DB) *gorm.DB, error) {
	pattern := controller.Contains(search)

	var userIDs []string
	if err := db.Model(&models.Profile{}).
		Where("LOWER(nickname) LIKE ? ESCAPE '!' OR LOWER(full_name) LIKE ? ESCAPE '!'", pattern, pattern).
		Pluck("id", &userIDs).Error; err != nil {
		return nil, err
	}

	var facilityIDs []string
	if err := db.Table(t.FacilityTable).
		Where("LOWER(name) LIKE ? ESCAPE '!'", pattern).
		Pluck(t.FacilityKey, &facilityIDs).Error; err != nil {
		return nil, err
	}

	return func(q *gorm.DB) *gorm.DB {
		cond := db.Where("LOWER(content) LIKE ? ESCAPE '!'", pattern)
		if len(userIDs) > 0 {
			cond = cond.Or("user_id IN ?", userIDs)
		}

		if len(facilityIDs) > 0 {
			cond = cond.Or(t.FacilityColumn+" IN ?", facilityIDs)
		}

		return q.Where(cond)
	}, nil
}

// List returns one page of reviews newest first with facility, author and
// images attached.
func List(db *gorm.DB, q Query) ([]Row, Pagination, error) {
	if db == nil {
		return nil, Pagination{}, controller.ErrDBNil
	}

	tables, err := Tables(q.Type)
	if err != nil {
		return nil, Pagination{}, err
	}

	if q.Page < 1 {
		q.Page = 1
	}

	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	all := make([]Row, 0)

	for _, t := range tables {
		var scope func(*gorm.DB) *gorm.DB

		if s := strings.TrimSpace(q.Search); s != "" {
			if scope, err = searchScope(db, t, s); err != nil {
				return nil, Pagination{}, err
			}
		}

		rows, err := load(db, t, scope)
		if err != nil {
			return nil, Pagination{}, err
		}

		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	p := Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      int64(len(all)),
		TotalPages: int(math.Ceil(float64(len(all)) / float64(q.Limit))),
	}

	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}

	end := min(start+q.Limit, len(all))

	page := all[start:end]
	if err = Enrich(db, page); err != nil {
		return nil, Pagination{}, err
	}

	return page, p, nil
}

// Latest returns the newest reviews of every type.
func Latest(db *gorm.DB, limit int) ([]Row, error) {
	rows, _, err := List(db, Query{Type: TypeAll, Page: 1, Limit: limit})
	return rows, err
}

// ForFacility returns the reviews of one facility and their average rating
// rounded to one decimal.
func ForFacility(db *gorm.DB, t models.ReviewType, facilityID string) ([]Row, float64, error) {
	if db == nil {
		return nil, 0, controller.ErrDBNil
	}

	rt, ok := models.TableFor(t)
	if !ok {
		return nil, 0, ErrUnknownType
	}

	rows, err := load(db, rt, func(q *gorm.DB) *gorm.DB {
		return q.Where(rt.FacilityColumn+" = ? AND is_hidden = ?", facilityID, false)
	})
	if err != nil {
		return nil, 0, err
	}

	if err = Enrich(db, rows); err != nil {
		return nil, 0, err
	}

	return rows, AverageRating(rows), nil
}

// AverageRating is the mean rating rounded to one decimal, 0 without rows.
func AverageRating(rows []Row) float64 {
	if len(rows) == 0 {
		return 0
	}

	var sum float64
	for _, r := range rows {
		sum += r.Rating
	}

	return math.Round(sum/float64(len(rows))*10) / 10 //nolint:mnd
}

// Get returns one review regardless of its deleted flag.
func Get(db *gorm.DB, t models.ReviewType, id string) (*Row, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rt, ok := models.TableFor(t)
	if !ok {
		return nil, ErrUnknownType
	}

	rows := make([]Row, 0, 1)
	if err := db.Table(rt.Table).Select(selectColumns(rt)).Where("id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	rows[0].ReviewType = string(rt.Type)

	if err := Enrich(db, rows); err != nil {
		return nil, err
	}

	return &rows[0], nil
}

type facilityName struct {
	ID   string
	Name string
}

// Enrich attaches author, facility name and images with one query per
// related table and review type.
func Enrich(db *gorm.DB, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(rows))
	byType := make(map[string][]int)

	for i := range rows {
		userIDs = append(userIDs, rows[i].UserID)
		byType[rows[i].ReviewType] = append(byType[rows[i].ReviewType], i)
		rows[i].Images = []Image{}
	}

	profiles, err := profile.ByIDs(db, userIDs)
	if err != nil {
		return err
	}

	for i := range rows {
		if p, ok := profiles[rows[i].UserID]; ok {
			rows[i].UserName = p.DisplayName()
			rows[i].UserEmail = p.Email
		}
	}

	for kind, idx := range byType {
		rt, ok := models.TableFor(models.ReviewType(kind))
		if !ok {
			continue
		}

		reviewIDs := make([]string, 0, len(idx))
		facilityIDs := make([]string, 0, len(idx))

		for _, i := range idx {
			reviewIDs = append(reviewIDs, rows[i].ID)
			facilityIDs = append(facilityIDs, rows[i].FacilityID)
		}

		var names []facilityName
		if err = db.Table(rt.FacilityTable).
			Select(rt.FacilityKey+" AS id, name").
			Where(rt.FacilityKey+" IN ?", controller.Unique(facilityIDs)).
			Scan(&names).Error; err != nil {
			return err
		}

		nameByID := make(map[string]string, len(names))
		for _, n := range names {
			nameByID[n.ID] = n.Name
		}

		var images []Image
		if err = db.Table(rt.ImageTable).
			Select("id, review_id, image_url, image_order").
			Where("review_id IN ?", reviewIDs).
			Order("image_order ASC").
			Scan(&images).Error; err != nil {
			return err
		}

		imagesByReview := make(map[string][]Image)
		for _, img := range images {
			imagesByReview[img.ReviewID] = append(imagesByReview[img.ReviewID], img)
		}

		for _, i := range idx {
			rows[i].FacilityName = nameByID[rows[i].FacilityID]
			if imgs, ok := imagesByReview[rows[i].ID]; ok {
				rows[i].Images = imgs
			}
		}
	}

	return nil
}

// SetHidden toggles whether a review is shown in the app.
func SetHidden(db *gorm.DB, t models.ReviewType, id string, hidden bool) (*Row, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rt, ok := models.TableFor(t)
	if !ok {
		return nil, ErrUnknownType
	}

	res := db.Model(rt.Model()).Where("id = ?", id).Update("is_hidden", hidden)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return Get(db, t, id)
}

// SoftDelete removes the images of a review and flags it deleted.
// It returns the image URLs that were attached so callers can purge storage.
func SoftDelete(db *gorm.DB, t models.ReviewType, id string) ([]string, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rt, ok := models.TableFor(t)
	if !ok {
		return nil, ErrUnknownType
	}

	var urls []string

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(rt.Model()).Where("id = ? AND is_deleted = ?", id, false).Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(rt.ImageModel()).Where("review_id = ?", id).Pluck("image_url", &urls).Error; err != nil {
			return err
		}

		return tx.Where("review_id = ?", id).Delete(rt.ImageModel()).Error
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}

// DailyCount is the number of reviews written on one day.
type DailyCount struct {
	Date  string `json:"date"` // M/D
	Count int    `json:"count"`
}

// Daily counts the reviews of every type written on each of the last
// DailyDays days including today, oldest first, in loc.
func Daily(db *gorm.DB, now time.Time, loc *time.Location) ([]DailyCount, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if loc == nil {
		loc = time.UTC
	}

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(DailyDays - 1))

	out := make([]DailyCount, DailyDays)
	index := make(map[string]int, DailyDays)

	for i := range DailyDays {
		d := start.AddDate(0, 0, i)
		out[i] = DailyCount{Date: d.Format("1/2")}
		index[d.Format(time.DateOnly)] = i
	}

	tables, _ := Tables(TypeAll)

	for _, t := range tables {
		var stamps []time.Time
		if err := db.Table(t.Table).
			Where("is_deleted = ? AND created_at >= ?", false, start.UTC()).
			Pluck("created_at", &stamps).Error; err != nil {
			return nil, err
		}

		for _, ts := range stamps {
			if i, ok := index[ts.In(loc).Format(time.DateOnly)]; ok {
				out[i].Count++
			}
		}
	}

	return out, nil
}
