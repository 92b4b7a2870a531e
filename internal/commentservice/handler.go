package commentservice

import (
	"context"
	"database/sql"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

func NewCommentService(db *sql.DB, c *common.Cache) *CommentService {
	return &CommentService{m: newCommentModel(db), c: c}
}

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id"`
	PostID   int64  `json:"-"`
	UserID   int64  `json:"-"`
}

// Create adds a comment, or a reply when ParentID is set. Replies deeper than
// MaxDepth are rejected; a reply's depth is always its parent's depth plus one.
func (s *CommentService) Create(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, req.Content)
	validateID(v, req.PostID, "post_id")
	validateID(v, req.UserID, "user_id")
	if req.ParentID != nil {
		validateID(v, *req.ParentID, "parent_id")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c := &Comment{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		UserID:   req.UserID,
		Content:  req.Content,
	}

	if err := s.m.insert(ctx, c); err != nil {
		return nil, err
	}

	s.c.DeleteCommentPages(req.PostID)
	s.c.Delete(common.CacheKeyPost(req.PostID))

	return c, nil
}

type CommentPage struct {
	Comments []Comment `json:"comments"`
	Metadata Metadata  `json:"metadata"`
}

// FindByPost returns one page of the post's comment threads with pagination
// metadata. Pages within the enumerated invalidation range are cached.
func (s *CommentService) FindByPost(ctx context.Context, postID int64, page, limit int, sort string) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if sort == "" {
		sort = SortNewest
	}

	v := common.NewValidator()
	validateID(v, postID, "post_id")
	validateSort(v, sort)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	cacheable := sort == SortNewest && limit == DefaultLimit && page <= common.MaxCachedCommentPages
	key := common.CacheKeyComments(postID, page)

	if cacheable {
		if cached, ok := s.c.Get(key); ok {
			if cp, ok := cached.(*CommentPage); ok {
				return cp, nil
			}
		}
	}

	offset := (page - 1) * limit

	comments, total, err := s.m.listByPost(ctx, postID, limit, offset, sort)
	if err != nil {
		return nil, err
	}

	cp := &CommentPage{
		Comments: comments,
		Metadata: Metadata{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: offset+len(comments) < total,
			HasPrev: page > 1,
		},
	}

	if cacheable {
		s.c.Set(key, cp)
	}

	return cp, nil
}

// Update edits a comment's content. Only the author may edit, and deleted
// comments stay frozen.
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, content string) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, content)
	validateID(v, commentID, "comment_id")
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c, err := s.m.getByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if c.Deleted {
		return nil, ErrCommentDeleted
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}

	c.Content = content

	if err := s.m.update(ctx, c); err != nil {
		return nil, err
	}

	s.c.DeleteCommentPages(c.PostID)

	return c, nil
}

// Remove soft-deletes a comment: the row keeps its place in the thread so
// descendants stay reachable, the content becomes the placeholder string, and
// the post's comment counter drops by one.
func (s *CommentService) Remove(ctx context.Context, commentID, userID int64) error {
	v := common.NewValidator()
	validateID(v, commentID, "comment_id")
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	c, err := s.m.getByID(ctx, commentID)
	if err != nil {
		return err
	}

	if c.Deleted {
		return ErrCommentDeleted
	}
	if c.UserID != userID {
		return ErrNotOwner
	}

	if err := s.m.softDelete(ctx, commentID, c.PostID); err != nil {
		return err
	}

	s.c.DeleteCommentPages(c.PostID)
	s.c.Delete(common.CacheKeyPost(c.PostID))

	return nil
}

// ToggleLike flips the caller's like on the comment and returns the new state
// and count.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID int64) (*LikeResult, error) {
	v := common.NewValidator()
	validateID(v, commentID, "comment_id")
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c, err := s.m.getByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	result, err := s.m.toggleLike(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	s.c.DeleteCommentPages(c.PostID)

	return result, nil
}
