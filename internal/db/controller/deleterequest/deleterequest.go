// Package deleterequest handles facility owner requests to remove reviews.
package deleterequest

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/controller/review"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a request does not exist.
	ErrNotFound = errors.New("review delete request not found")
	// ErrInvalidStatus is returned for a status other than pending, approved or rejected.
	ErrInvalidStatus = errors.New("status must be pending, approved or rejected")
)

// Enriched is a request with the requester and the targeted review.
type Enriched struct {
	models.ReviewDeleteRequest
	Requester *models.Profile `json:"requester"`
	Review    *review.Row     `json:"review"`
}

// List returns every request newest first.
func List(db *gorm.DB) ([]Enriched, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var requests []models.ReviewDeleteRequest
	if err := db.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	return enrich(db, requests)
}

func enrich(db *gorm.DB, requests []models.ReviewDeleteRequest) ([]Enriched, error) {
	out := make([]Enriched, 0, len(requests))

	requesterIDs := make([]string, 0, len(requests))
	reviewIDs := make(map[string][]string)

	for _, r := range requests {
		requesterIDs = append(requesterIDs, r.RequesterID)
		reviewIDs[r.ReviewType] = append(reviewIDs[r.ReviewType], r.ReviewID)
	}

	requesters, err := profile.ByIDs(db, requesterIDs)
	if err != nil {
		return nil, err
	}

	reviews := make(map[string]review.Row)

	for kind, ids := range reviewIDs {
		rt, ok := models.TableFor(models.ReviewType(kind))
		if !ok {
			continue
		}

		rows := make([]review.Row, 0, len(ids))
		if err = db.Table(rt.Table).
			Select("id, "+rt.FacilityColumn+" AS facility_id, user_id, rating, content, helpful_count, is_hidden, is_deleted, created_at").
			Where("id IN ?", controller.Unique(ids)).
			Scan(&rows).Error; err != nil {
			return nil, err
		}

		for i := range rows {
			rows[i].ReviewType = kind
		}

		if err = review.Enrich(db, rows); err != nil {
			return nil, err
		}

		for _, row := range rows {
			reviews[kind+"/"+row.ID] = row
		}
	}

	for _, r := range requests {
		e := Enriched{ReviewDeleteRequest: r}

		if p, ok := requesters[r.RequesterID]; ok {
			e.Requester = &p
		}

		if row, ok := reviews[r.ReviewType+"/"+r.ReviewID]; ok {
			e.Review = &row
		}

		out = append(out, e)
	}

	return out, nil
}

// Get returns one request.
func Get(db *gorm.DB, id string) (*models.ReviewDeleteRequest, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var r models.ReviewDeleteRequest
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &r, nil
}

// Process stores the admin decision. Approving soft deletes the review and
// returns the image URLs it had.
func Process(db *gorm.DB, id, status, notes string) (*models.ReviewDeleteRequest, []string, error) {
	switch status {
	case models.RequestPending, models.RequestApproved, models.RequestRejected:
	default:
		return nil, nil, ErrInvalidStatus
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, nil, err
	}

	var urls []string

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(r).Updates(map[string]interface{}{
			"status":      status,
			"admin_notes": notes,
		}).Error; err != nil {
			return err
		}

		if status != models.RequestApproved {
			return nil
		}

		var err error

		urls, err = review.SoftDelete(tx, models.ReviewType(r.ReviewType), r.ReviewID)
		if errors.Is(err, review.ErrNotFound) {
			return nil
		}

		return err
	})
	if err != nil {
		return nil, nil, err
	}

	r.Status = status
	r.AdminNotes = notes

	return r, urls, nil
}

// Delete removes a request.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return controller.ErrDBNil
	}

	res := db.Where("id = ?", id).Delete(&models.ReviewDeleteRequest{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
