package custominfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
)

func TestSetAndGet(t *testing.T) {
	db := dbtest.New(t)

	_, err := Get(db, models.FacilityKindergarten, "K1")
	require.ErrorIs(t, err, ErrNotFound)

	info, err := Set(db, models.FacilityKindergarten, "K1", map[string]interface{}{"bus": "yes"}, false)
	require.NoError(t, err)
	assert.Equal(t, "K1", info.Code)
	assert.Equal(t, "yes", info.Fields["bus"])
	assert.False(t, info.IsActive)

	_, err = Active(db, models.FacilityKindergarten, "K1")
	require.ErrorIs(t, err, ErrNotFound)

	info, err = Set(db, models.FacilityKindergarten, "K1", map[string]interface{}{"pool": true}, true)
	require.NoError(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, true, info.Fields["pool"])
	assert.NotContains(t, info.Fields, "bus")

	active, err := Active(db, models.FacilityKindergarten, "K1")
	require.NoError(t, err)
	assert.Equal(t, info.ID, active.ID)

	var n int64
	require.NoError(t, db.Model(&models.KindergartenCustomInfo{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestErrors(t *testing.T) {
	db := dbtest.New(t)

	_, err := Set(db, "school", "X", nil, true)
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = Set(db, models.FacilityChildcare, "", nil, true)
	require.ErrorIs(t, err, ErrCodeEmpty)

	_, err = Get(db, "school", "X")
	require.ErrorIs(t, err, ErrUnknownKind)
}
