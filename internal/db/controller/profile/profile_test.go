package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
)

func TestFindByContact(t *testing.T) {
	db := dbtest.New(t)

	p := models.Profile{FullName: "Kim", Email: "Kim.Mom@Example.com", Phone: "010-1234 5678", IsActive: true}
	require.NoError(t, db.Create(&p).Error)

	testCases := []struct {
		name    string
		phone   string
		email   string
		wantErr error
	}{
		{name: "phone without separators", phone: "01012345678"},
		{name: "phone with other separators", phone: "010 1234-5678"},
		{name: "email any case", email: "kim.mom@example.COM"},
		{name: "unknown phone", phone: "01000000000", wantErr: ErrNotFound},
		{name: "unknown email", email: "nobody@example.com", wantErr: ErrNotFound},
		{name: "nothing given", wantErr: ErrLookupEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindByContact(db, tc.phone, tc.email)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)
		})
	}
}

func TestActiveIDsAndSetActive(t *testing.T) {
	db := dbtest.New(t)

	a := dbtest.Profile(t, db, "a", true)
	b := dbtest.Profile(t, db, "b", false)

	ids, err := ActiveIDs(db)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids)

	updated, err := SetActive(db, b.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	ids, err = ActiveIDs(db)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	_, err = SetActive(db, "missing", true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByIDs(t *testing.T) {
	db := dbtest.New(t)

	a := dbtest.Profile(t, db, "a", true)

	got, err := ByIDs(db, []string{a.ID, a.ID, "", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[a.ID].Nickname)
}
