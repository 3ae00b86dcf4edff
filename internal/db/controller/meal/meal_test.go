package meal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
)

func TestUpsert(t *testing.T) {
	db := dbtest.New(t)

	inactive := false

	results, err := Upsert(db, models.FacilityKindergarten, "K1", []Input{
		{MealDate: "2026-10-01", MenuDescription: "rice", MealImages: []string{"a.jpg"}},
		{MealDate: "2026-10-02", MenuDescription: "noodles"},
		{MealDate: "10/03", MenuDescription: "bad"},
		{MealDate: "2026-10-04", MenuDescription: "hidden", IsActive: &inactive},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.Equal(t, ErrInvalidDate.Error(), results[2].Error)
	assert.True(t, results[3].Success)

	results, err = Upsert(db, models.FacilityKindergarten, "K1", []Input{
		{MealDate: "2026-10-01", MenuDescription: "rice and soup"},
	})
	require.NoError(t, err)
	assert.True(t, results[0].Success)

	var n int64
	require.NoError(t, db.Model(&models.KindergartenMeal{}).Count(&n).Error)
	assert.Equal(t, int64(3), n, "existing dates are updated in place")

	meals, err := List(db, models.FacilityKindergarten, "K1")
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "2026-10-02", meals[0].MealDate)
	assert.Equal(t, "rice and soup", meals[1].MenuDescription)
	assert.Empty(t, meals[1].MealImages)
	assert.Equal(t, "K1", meals[1].Code)
}

func TestUpsertErrors(t *testing.T) {
	db := dbtest.New(t)

	_, err := Upsert(db, "school", "X", nil)
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = Upsert(db, models.FacilityChildcare, "", nil)
	require.ErrorIs(t, err, ErrCodeEmpty)

	_, err = List(db, "school", "X")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestChildcareMealsAreSeparate(t *testing.T) {
	db := dbtest.New(t)

	_, err := Upsert(db, models.FacilityChildcare, "C1", []Input{{MealDate: "2026-10-01", MenuDescription: "soup"}})
	require.NoError(t, err)

	meals, err := List(db, models.FacilityKindergarten, "C1")
	require.NoError(t, err)
	assert.Empty(t, meals)

	meals, err = List(db, models.FacilityChildcare, "C1")
	require.NoError(t, err)
	assert.Len(t, meals, 1)
}
