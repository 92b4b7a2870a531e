package commentservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/ThilinaV98/blog-platform/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestUser(db *sql.DB, username, email string) (int64, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`, username, email, randomBytes).Scan(&id)
	return id, err
}

func setupTestPost(db *sql.DB, authorID int64, slug string) (int64, error) {
	var id int64
	err := db.QueryRow(`
		INSERT INTO posts (author_id, title, slug, content, status)
		VALUES ($1, 'Test Post', $2, 'Some content.', 'published')
		RETURNING id`, authorID, slug).Scan(&id)
	return id, err
}

func setupTestEnvironment(t *testing.T) (*CommentService, *sql.DB, int64, int64) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	userID, err := setupTestUser(db, "testuser", "testuser@example.com")
	require.NoError(t, err)

	postID, err := setupTestPost(db, userID, "test-post")
	require.NoError(t, err)

	return NewCommentService(db, cache), db, userID, postID
}

func TestCreateComment(t *testing.T) {
	s, db, userID, postID := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		req         *CreateCommentRequest
		expectedErr error
	}{
		{
			name:        "valid comment",
			req:         &CreateCommentRequest{Content: "First!", PostID: postID, UserID: userID},
			expectedErr: nil,
		},
		{
			name:        "empty content",
			req:         &CreateCommentRequest{Content: "", PostID: postID, UserID: userID},
			expectedErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
		{
			name:        "missing post",
			req:         &CreateCommentRequest{Content: "Hello", PostID: 999, UserID: userID},
			expectedErr: ErrPostNotFound,
		},
		{
			name:        "missing parent",
			req:         &CreateCommentRequest{Content: "Hello", PostID: postID, UserID: userID, ParentID: ptr(int64(999))},
			expectedErr: ErrParentNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			comment, err := s.Create(context.Background(), tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.Equal(t, 0, comment.Depth)
				assert.NotEmpty(t, comment.Path)

				var count int
				err := db.QueryRow("SELECT comment_count FROM posts WHERE id = $1", postID).Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			}

			t.Cleanup(func() {
				_, err := db.Exec("DELETE FROM comments")
				assert.NoError(t, err)
				_, err = db.Exec("UPDATE posts SET comment_count = 0")
				assert.NoError(t, err)
			})
		})
	}
}

func TestReplyDepth(t *testing.T) {
	s, _, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	root, err := s.Create(ctx, &CreateCommentRequest{Content: "root", PostID: postID, UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth)

	reply, err := s.Create(ctx, &CreateCommentRequest{Content: "reply", PostID: postID, UserID: userID, ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, reply.Depth)
	assert.Equal(t, root.Depth+1, reply.Depth)

	nested, err := s.Create(ctx, &CreateCommentRequest{Content: "nested", PostID: postID, UserID: userID, ParentID: &reply.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, nested.Depth)

	_, err = s.Create(ctx, &CreateCommentRequest{Content: "too deep", PostID: postID, UserID: userID, ParentID: &nested.ID})
	assert.Equal(t, ErrMaxDepthExceeded, err)
}

func TestReplyParentMismatch(t *testing.T) {
	s, db, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	otherPost, err := setupTestPost(db, userID, "other-post")
	require.NoError(t, err)

	root, err := s.Create(ctx, &CreateCommentRequest{Content: "root", PostID: postID, UserID: userID})
	require.NoError(t, err)

	_, err = s.Create(ctx, &CreateCommentRequest{Content: "wrong post", PostID: otherPost, UserID: userID, ParentID: &root.ID})
	assert.Equal(t, ErrParentMismatch, err)
}

func TestUpdateComment(t *testing.T) {
	s, db, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	otherUser, err := setupTestUser(db, "otheruser", "otheruser@example.com")
	require.NoError(t, err)

	comment, err := s.Create(ctx, &CreateCommentRequest{Content: "original", PostID: postID, UserID: userID})
	require.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		_, err := s.Update(ctx, comment.ID, otherUser, "hijacked")
		assert.Equal(t, ErrNotOwner, err)
	})

	t.Run("owner", func(t *testing.T) {
		updated, err := s.Update(ctx, comment.ID, userID, "edited content")
		require.NoError(t, err)
		assert.Equal(t, "edited content", updated.Content)
		assert.True(t, updated.Edited)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := s.Update(ctx, 999, userID, "whatever")
		assert.Equal(t, ErrRecordNotFound, err)
	})
}

func TestRemoveComment(t *testing.T) {
	s, db, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	otherUser, err := setupTestUser(db, "otheruser", "otheruser@example.com")
	require.NoError(t, err)

	root, err := s.Create(ctx, &CreateCommentRequest{Content: "root", PostID: postID, UserID: userID})
	require.NoError(t, err)

	reply, err := s.Create(ctx, &CreateCommentRequest{Content: "reply", PostID: postID, UserID: userID, ParentID: &root.ID})
	require.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		err := s.Remove(ctx, root.ID, otherUser)
		assert.Equal(t, ErrNotOwner, err)
	})

	t.Run("soft delete keeps tree position", func(t *testing.T) {
		err := s.Remove(ctx, root.ID, userID)
		require.NoError(t, err)

		var content string
		var deleted bool
		err = db.QueryRow("SELECT content, deleted FROM comments WHERE id = $1", root.ID).Scan(&content, &deleted)
		require.NoError(t, err)
		assert.Equal(t, DeletedPlaceholder, content)
		assert.True(t, deleted)

		page, err := s.FindByPost(ctx, postID, 1, 20, SortNewest)
		require.NoError(t, err)
		require.Len(t, page.Comments, 2)

		var foundReply bool
		for _, c := range page.Comments {
			if c.ID == reply.ID {
				foundReply = true
				assert.Equal(t, 1, c.Depth)
			}
		}
		assert.True(t, foundReply)
	})

	t.Run("already deleted", func(t *testing.T) {
		err := s.Remove(ctx, root.ID, userID)
		assert.Equal(t, ErrCommentDeleted, err)
	})

	t.Run("edit after delete", func(t *testing.T) {
		_, err := s.Update(ctx, root.ID, userID, "resurrect")
		assert.Equal(t, ErrCommentDeleted, err)
	})
}

func TestFindByPost(t *testing.T) {
	s, _, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	first, err := s.Create(ctx, &CreateCommentRequest{Content: "first thread", PostID: postID, UserID: userID})
	require.NoError(t, err)

	second, err := s.Create(ctx, &CreateCommentRequest{Content: "second thread", PostID: postID, UserID: userID})
	require.NoError(t, err)

	// reply to the first thread, created last
	reply, err := s.Create(ctx, &CreateCommentRequest{Content: "reply to first", PostID: postID, UserID: userID, ParentID: &first.ID})
	require.NoError(t, err)

	t.Run("newest threads first, replies grouped", func(t *testing.T) {
		page, err := s.FindByPost(ctx, postID, 1, 20, SortNewest)
		require.NoError(t, err)
		require.Len(t, page.Comments, 3)

		assert.Equal(t, second.ID, page.Comments[0].ID)
		assert.Equal(t, first.ID, page.Comments[1].ID)
		assert.Equal(t, reply.ID, page.Comments[2].ID)
		assert.Equal(t, 3, page.Metadata.Total)
	})

	t.Run("oldest threads first", func(t *testing.T) {
		page, err := s.FindByPost(ctx, postID, 1, 20, SortOldest)
		require.NoError(t, err)
		require.Len(t, page.Comments, 3)

		assert.Equal(t, first.ID, page.Comments[0].ID)
		assert.Equal(t, reply.ID, page.Comments[1].ID)
		assert.Equal(t, second.ID, page.Comments[2].ID)
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := s.FindByPost(ctx, postID, 1, 20, "best")
		assert.Equal(t, common.ValidationError{Errors: map[string]string{"sort": "must be newest or oldest"}}, err)
	})

	t.Run("pagination metadata", func(t *testing.T) {
		page, err := s.FindByPost(ctx, postID, 1, 2, SortNewest)
		require.NoError(t, err)
		assert.Len(t, page.Comments, 2)
		assert.Equal(t, 2, page.Metadata.Limit)
		assert.True(t, page.Metadata.HasNext)
		assert.False(t, page.Metadata.HasPrev)
	})

	t.Run("non-default limit bypasses cached page", func(t *testing.T) {
		// warm the cache with the full default-limit page
		warm, err := s.FindByPost(ctx, postID, 1, DefaultLimit, SortNewest)
		require.NoError(t, err)
		require.Len(t, warm.Comments, 3)

		page, err := s.FindByPost(ctx, postID, 1, 2, SortNewest)
		require.NoError(t, err)
		assert.Len(t, page.Comments, 2)
		assert.Equal(t, 2, page.Metadata.Limit)
		assert.True(t, page.Metadata.HasNext)

		// and the narrow page must not displace the cached default one
		again, err := s.FindByPost(ctx, postID, 1, DefaultLimit, SortNewest)
		require.NoError(t, err)
		assert.Len(t, again.Comments, 3)
	})
}

func TestToggleCommentLike(t *testing.T) {
	s, _, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	comment, err := s.Create(ctx, &CreateCommentRequest{Content: "likeable", PostID: postID, UserID: userID})
	require.NoError(t, err)

	result, err := s.ToggleLike(ctx, comment.ID, userID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	result, err = s.ToggleLike(ctx, comment.ID, userID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikeCount)

	result, err = s.ToggleLike(ctx, comment.ID, userID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	_, err = s.ToggleLike(ctx, 999, userID)
	assert.Equal(t, ErrRecordNotFound, err)
}

func ptr[T any](v T) *T {
	return &v
}
