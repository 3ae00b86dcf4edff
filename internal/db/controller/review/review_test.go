package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
)

type fixture struct {
	db     *gorm.DB
	author models.Profile
	kgID   string
	pgID   string
	ccID   string
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := dbtest.New(t)
	author := dbtest.Profile(t, db, "sunny", true)

	require.NoError(t, db.Create(&models.Kindergarten{Code: "K1", Name: "Rainbow Kindergarten"}).Error)
	require.NoError(t, db.Create(&models.Playground{ID: "P1", Name: "River Park"}).Error)
	require.NoError(t, db.Create(&models.Childcare{Code: "C1", Name: "Little Stars"}).Error)

	now := time.Now().UTC()

	kg := models.KindergartenReview{
		KindergartenCode: "K1",
		ReviewFields:     models.ReviewFields{UserID: author.ID, Rating: 4, Content: "warm teachers"},
	}
	kg.CreatedAt = now.Add(-3 * time.Hour)
	require.NoError(t, db.Create(&kg).Error)

	require.NoError(t, db.Create(&[]models.KindergartenReviewImage{
		{ReviewImageFields: models.ReviewImageFields{ReviewID: kg.ID, ImageURL: "second", ImageOrder: 2}},
		{ReviewImageFields: models.ReviewImageFields{ReviewID: kg.ID, ImageURL: "first", ImageOrder: 1}},
	}).Error)

	pg := models.PlaygroundReview{
		PlaygroundID: "P1",
		ReviewFields: models.ReviewFields{UserID: author.ID, Rating: 5, Content: "clean slides"},
	}
	pg.CreatedAt = now.Add(-2 * time.Hour)
	require.NoError(t, db.Create(&pg).Error)

	cc := models.ChildcareReview{
		ChildcareCode: "C1",
		ReviewFields:  models.ReviewFields{UserID: author.ID, Rating: 3, Content: "small rooms"},
	}
	cc.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, db.Create(&cc).Error)

	deleted := models.ChildcareReview{
		ChildcareCode: "C1",
		ReviewFields:  models.ReviewFields{UserID: author.ID, Rating: 1, Content: "removed", IsDeleted: true},
	}
	require.NoError(t, db.Create(&deleted).Error)

	return fixture{db: db, author: author, kgID: kg.ID, pgID: pg.ID, ccID: cc.ID}
}

func TestListAllTypesNewestFirst(t *testing.T) {
	f := setup(t)

	rows, page, err := List(f.db, Query{Type: TypeAll})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, f.ccID, rows[0].ID)
	assert.Equal(t, "childcare", rows[0].ReviewType)
	assert.Equal(t, "Little Stars", rows[0].FacilityName)
	assert.Equal(t, "sunny", rows[0].UserName)

	assert.Equal(t, f.kgID, rows[2].ID)
	require.Len(t, rows[2].Images, 2)
	assert.Equal(t, "first", rows[2].Images[0].ImageURL)

	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListPagination(t *testing.T) {
	f := setup(t)

	rows, page, err := List(f.db, Query{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.kgID, rows[0].ID)
	assert.Equal(t, 2, page.TotalPages)

	rows, _, err = List(f.db, Query{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListSearch(t *testing.T) {
	f := setup(t)

	testCases := []struct {
		name   string
		search string
		kind   string
		want   []string
	}{
		{name: "content", search: "SLIDES", want: []string{f.pgID}},
		{name: "facility name", search: "rainbow", want: []string{f.kgID}},
		{name: "author name", search: "sun", want: []string{f.ccID, f.pgID, f.kgID}},
		{name: "author name within type", search: "sun", kind: "playground", want: []string{f.pgID}},
		{name: "no match", search: "zzz", want: []string{}},
		{name: "underscore is literal", search: "_", want: []string{}},
		{name: "percent is literal", search: "%", want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, _, err := List(f.db, Query{Type: tc.kind, Search: tc.search})
			require.NoError(t, err)

			ids := make([]string, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r.ID)
			}

			assert.Equal(t, tc.want, ids)
		})
	}

	_, _, err := List(f.db, Query{Type: "zoo"})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestListSearchWildcardsInText(t *testing.T) {
	f := setup(t)

	literal := models.PlaygroundReview{
		PlaygroundID: "P1",
		ReviewFields: models.ReviewFields{UserID: f.author.ID, Rating: 5, Content: "100% fun_zone"},
	}
	require.NoError(t, f.db.Create(&literal).Error)

	for _, search := range []string{"100%", "fun_zone", "%"} {
		rows, _, err := List(f.db, Query{Search: search})
		require.NoError(t, err)
		require.Len(t, rows, 1, search)
		assert.Equal(t, literal.ID, rows[0].ID, search)
	}
}

func TestForFacilityAverage(t *testing.T) {
	f := setup(t)

	second := models.KindergartenReview{
		KindergartenCode: "K1",
		ReviewFields:     models.ReviewFields{UserID: f.author.ID, Rating: 5},
	}
	require.NoError(t, f.db.Create(&second).Error)

	rows, avg, err := ForFacility(f.db, models.ReviewKindergarten, "K1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.InDelta(t, 4.5, avg, 0.001)

	assert.InDelta(t, 0, AverageRating(nil), 0.001)
	assert.InDelta(t, 3.7, AverageRating([]Row{{Rating: 3}, {Rating: 4}, {Rating: 4}}), 0.001)
}

func TestSoftDeleteAndHide(t *testing.T) {
	f := setup(t)

	row, err := SetHidden(f.db, models.ReviewKindergarten, f.kgID, true)
	require.NoError(t, err)
	assert.True(t, row.IsHidden)

	urls, err := SoftDelete(f.db, models.ReviewKindergarten, f.kgID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first", "second"}, urls)

	_, err = SoftDelete(f.db, models.ReviewKindergarten, f.kgID)
	require.ErrorIs(t, err, ErrNotFound)

	var images int64
	require.NoError(t, f.db.Model(&models.KindergartenReviewImage{}).Count(&images).Error)
	assert.Zero(t, images)

	got, err := Get(f.db, models.ReviewKindergarten, f.kgID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	_, err = Get(f.db, models.ReviewKindergarten, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDaily(t *testing.T) {
	f := setup(t)

	old := models.PlaygroundReview{PlaygroundID: "P1", ReviewFields: models.ReviewFields{UserID: f.author.ID}}
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -10)
	require.NoError(t, f.db.Create(&old).Error)

	now := time.Now().UTC()
	days, err := Daily(f.db, now, time.UTC)
	require.NoError(t, err)
	require.Len(t, days, DailyDays)

	assert.Equal(t, now.Format("1/2"), days[DailyDays-1].Date)

	total := 0
	for _, d := range days {
		total += d.Count
	}

	// three live reviews were written within the last three hours
	assert.Equal(t, 3, total)
}
