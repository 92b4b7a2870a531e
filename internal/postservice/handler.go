package postservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

var ErrNotOwner = errors.New("not the post author")

func NewPostService(db *sql.DB, c *common.Cache) *PostService {
	return &PostService{m: newPostModel(db), c: c}
}

type CreatePostRequest struct {
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	CategoryID     *int64     `json:"category_id"`
	Tags           []string   `json:"tags"`
	Status         PostStatus `json:"status"`
	Featured       bool       `json:"featured"`
	SEOTitle       string     `json:"seo_title"`
	SEODescription string     `json:"seo_description"`
	AuthorID       int64      `json:"-"`
}

type UpdatePostRequest struct {
	Title          *string     `json:"title"`
	Content        *string     `json:"content"`
	Excerpt        *string     `json:"excerpt"`
	CategoryID     *int64      `json:"category_id"`
	Tags           []string    `json:"tags"`
	Status         *PostStatus `json:"status"`
	Featured       *bool       `json:"featured"`
	SEOTitle       *string     `json:"seo_title"`
	SEODescription *string     `json:"seo_description"`
}

// Create persists a new post. The slug is derived from the title and made
// unique with a numeric suffix; read time is computed from the content.
func (s *PostService) Create(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	if req.Status == "" {
		req.Status = StatusDraft
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateTags(v, req.Tags)
	validateID(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	slug, err := s.m.uniqueSlug(ctx, Slugify(req.Title))
	if err != nil {
		return nil, err
	}

	if req.Tags == nil {
		req.Tags = []string{}
	}

	p := &Post{
		AuthorID:       req.AuthorID,
		Title:          req.Title,
		Slug:           slug,
		Content:        req.Content,
		Excerpt:        Excerpt(req.Excerpt, req.Content),
		CategoryID:     req.CategoryID,
		Tags:           req.Tags,
		Status:         req.Status,
		Featured:       req.Featured,
		ReadTime:       ReadTime(req.Content),
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
	}

	if err := s.m.insert(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetByID returns a post, counting the view. Reads go through the side cache;
// the view counter is a single best-effort UPDATE.
func (s *PostService) GetByID(ctx context.Context, id int64) (*Post, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.incrementViewCount(ctx, id); err != nil {
		return nil, err
	}

	if cached, ok := s.c.Get(common.CacheKeyPost(id)); ok {
		if p, ok := cached.(*Post); ok {
			return p, nil
		}
	}

	p, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyPost(id), p)

	return p, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// the view counts on cache hits too
	if cached, ok := s.c.Get(common.CacheKeyPostBySlug(slug)); ok {
		if p, ok := cached.(*Post); ok {
			if err := s.m.incrementViewCount(ctx, p.ID); err != nil {
				return nil, err
			}
			return p, nil
		}
	}

	p, err := s.m.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.m.incrementViewCount(ctx, p.ID); err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyPostBySlug(slug), p)

	return p, nil
}

// List pages over posts with the given filters. Results are cached per filter
// combination.
func (s *PostService) List(ctx context.Context, f ListFilters) ([]Post, Metadata, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	key := common.CacheKeyPosts(f)

	type cachedList struct {
		Posts []Post
		Meta  Metadata
	}

	if cached, ok := s.c.Get(key); ok {
		if list, ok := cached.(*cachedList); ok {
			return list.Posts, list.Meta, nil
		}
	}

	posts, meta, err := s.m.list(ctx, f)
	if err != nil {
		return nil, Metadata{}, err
	}

	s.c.Set(key, &cachedList{Posts: posts, Meta: meta})

	return posts, meta, nil
}

func (s *PostService) Search(ctx context.Context, q string, limit, page int) ([]Post, error) {
	v := common.NewValidator()
	v.Check(q != "", "q", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	return s.m.search(ctx, q, limit, (page-1)*limit)
}

// Update mutates a post. Only the author or an admin may update; a title
// change re-derives the slug.
func (s *PostService) Update(ctx context.Context, id, userID int64, admin bool, req *UpdatePostRequest) (*Post, error) {
	p, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.AuthorID != userID && !admin {
		return nil, ErrNotOwner
	}

	oldCategoryID := p.CategoryID
	oldSlug := p.Slug

	if req.Title != nil && *req.Title != p.Title {
		p.Title = *req.Title
		slug, err := s.m.uniqueSlug(ctx, Slugify(p.Title))
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	if req.Content != nil {
		p.Content = *req.Content
		p.ReadTime = ReadTime(p.Content)
	}
	if req.Excerpt != nil {
		p.Excerpt = Excerpt(*req.Excerpt, p.Content)
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			p.CategoryID = req.CategoryID
		}
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.SEOTitle != nil {
		p.SEOTitle = *req.SEOTitle
	}
	if req.SEODescription != nil {
		p.SEODescription = *req.SEODescription
	}

	v := common.NewValidator()
	validateTitle(v, p.Title)
	validateContent(v, p.Content)
	validateStatus(v, p.Status)
	validateTags(v, p.Tags)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.update(ctx, p, oldCategoryID); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyPost(p.ID))
	s.c.Delete(common.CacheKeyPostBySlug(oldSlug))
	s.c.Delete(common.CacheKeyPostBySlug(p.Slug))

	return p, nil
}

// Delete removes a post. Comments and likes cascade at the database level.
func (s *PostService) Delete(ctx context.Context, id, userID int64, admin bool) error {
	p, err := s.m.getByID(ctx, id)
	if err != nil {
		return err
	}

	if p.AuthorID != userID && !admin {
		return ErrNotOwner
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyPost(id))
	s.c.Delete(common.CacheKeyPostBySlug(p.Slug))
	s.c.DeleteCommentPages(id)

	return nil
}

// ToggleLike flips the caller's like on the post and returns the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (*LikeResult, error) {
	v := common.NewValidator()
	validateID(v, postID, "post_id")
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	result, err := s.m.toggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyPost(postID))

	return result, nil
}
