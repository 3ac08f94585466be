package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blognest/domain"
	"blognest/errs"
)

func TestCreatePostValidation(t *testing.T) {
	s := testServices(t)
	alice := testUser(t, s, "alice")

	err := s.Post.Create(&domain.Post{UserID: alice.ID, Text: "   "})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = s.Post.Create(&domain.Post{Text: "no author"})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	missingGroup := 9999
	err = s.Post.Create(&domain.Post{UserID: alice.ID, Text: "hello", GroupID: &missingGroup})
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestCreatePostPreloadsAuthor(t *testing.T) {
	s := testServices(t)
	alice := testUser(t, s, "alice")
	travel := testGroup(t, s, "travel")

	post := &domain.Post{UserID: alice.ID, GroupID: &travel.ID, Text: "hello from the road"}
	require.NoError(t, s.Post.Create(post))

	assert.Equal(t, "alice", post.User.Username)
	require.NotNil(t, post.Group)
	assert.Equal(t, "travel", post.Group.Slug)
}

func TestUpdatePostKeepsAuthor(t *testing.T) {
	s := testServices(t)
	alice := testUser(t, s, "alice")
	post := testPost(t, s, alice, nil, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	// Even a tampered author field must not survive an update.
	post.Text = "edited"
	post.UserID = 9999
	require.NoError(t, s.Post.Update(post))

	found, err := s.Post.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", found.Text)
	assert.Equal(t, alice.ID, found.UserID)
}

func TestDeletePostRemovesComments(t *testing.T) {
	s := testServices(t)
	alice := testUser(t, s, "alice")
	post := testPost(t, s, alice, nil, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Comment.Create(&domain.Comment{PostID: post.ID, UserID: alice.ID, Text: "hello"}))

	require.NoError(t, s.Post.Delete(post))

	_, err := s.Post.ByID(post.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	count, err := s.Comment.CountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountByUserID(t *testing.T) {
	s := testServices(t)
	alice := testUser(t, s, "alice")
	bob := testUser(t, s, "bob")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testPost(t, s, alice, nil, base)
	testPost(t, s, alice, nil, base.Add(time.Minute))
	testPost(t, s, bob, nil, base.Add(2*time.Minute))

	count, err := s.Post.CountByUserID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
