package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
)

func TestListEnrichesCounts(t *testing.T) {
	db := dbtest.New(t)

	author := dbtest.Profile(t, db, "author", true)
	fan := dbtest.Profile(t, db, "fan", true)

	posts := []models.CommunityPost{
		{AuthorID: author.ID, Category: "free", Content: "one", CommentsCount: 9},
		{AuthorID: author.ID, Category: "qna", Content: "two"},
	}
	require.NoError(t, db.Create(&posts).Error)

	require.NoError(t, db.Create(&[]models.Comment{
		{PostID: posts[0].ID, UserID: fan.ID, Content: "a"},
		{PostID: posts[0].ID, UserID: fan.ID, Content: "b"},
		{PostID: posts[0].ID, UserID: fan.ID, Content: "gone", IsDeleted: true},
	}).Error)
	require.NoError(t, db.Create(&models.PostLike{PostID: posts[0].ID, UserID: fan.ID}).Error)
	require.NoError(t, db.Create(&models.Report{
		ReporterID: fan.ID, TargetType: models.TargetPost, TargetID: posts[0].ID, Reason: "spam",
	}).Error)

	list, err := List(db, "free")
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, int64(2), got.ActualCommentsCount)
	assert.Equal(t, int64(1), got.ActualLikesCount)
	assert.Equal(t, 1, got.ReportsCount)
	assert.Equal(t, "spam", got.Reports[0].Reason)

	all, err := List(db, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetDetails(t *testing.T) {
	db := dbtest.New(t)

	author := dbtest.Profile(t, db, "author", true)
	fan := dbtest.Profile(t, db, "fan", true)

	p := models.CommunityPost{AuthorID: author.ID, Content: "post"}
	require.NoError(t, db.Create(&p).Error)

	parent := models.Comment{PostID: p.ID, UserID: fan.ID, Content: "parent"}
	require.NoError(t, db.Create(&parent).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: p.ID, ParentID: &parent.ID, UserID: author.ID, Content: "reply"}).Error)
	require.NoError(t, db.Create(&models.PostLike{PostID: p.ID, UserID: fan.ID}).Error)

	d, err := GetDetails(db, p.ID)
	require.NoError(t, err)
	require.Len(t, d.Comments, 2)
	assert.Equal(t, int64(1), d.Comments[0].RepliesCount)
	require.NotNil(t, d.Comments[0].Author)
	assert.Equal(t, "fan", d.Comments[0].Author.Nickname)
	require.Len(t, d.Likes, 1)
	assert.Equal(t, fan.ID, d.Likes[0].User.ID)

	_, err = GetDetails(db, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndDeleteComment(t *testing.T) {
	db := dbtest.New(t)

	author := dbtest.Profile(t, db, "author", true)

	p := models.CommunityPost{AuthorID: author.ID, Content: "post", CommentsCount: 1}
	require.NoError(t, db.Create(&p).Error)

	c := models.Comment{PostID: p.ID, UserID: author.ID, Content: "c"}
	require.NoError(t, db.Create(&c).Error)

	require.NoError(t, DeleteComment(db, c.ID))
	require.ErrorIs(t, DeleteComment(db, c.ID), ErrCommentNotFound)

	got, err := Get(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)

	require.NoError(t, Delete(db, p.ID))
	require.ErrorIs(t, Delete(db, p.ID), ErrNotFound)
}
