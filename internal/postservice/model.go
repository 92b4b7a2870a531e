package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrUserForeignKey   = errors.New("author does not exist")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEditConflict     = errors.New("edit conflict")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError reports whether err is a violation of the named constraint.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// uniqueSlug appends a numeric suffix when the base slug is taken. The next
// suffix comes from the highest one present, so gaps left by deleted posts
// never produce a duplicate.
func (m *PostModel) uniqueSlug(ctx context.Context, base string) (string, error) {
	query := `
		SELECT slug FROM posts
		WHERE slug = $1 OR slug LIKE $1 || '-%'`

	rows, err := m.db.QueryContext(ctx, query, base)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	taken := false
	max := 1
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return "", err
		}
		if slug == base {
			taken = true
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(slug, base+"-")); err == nil && n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if !taken && max == 1 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, max+1), nil
}

func (m *PostModel) insert(ctx context.Context, p *Post) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if p.CategoryID != nil {
		err := tx.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1 AND active = true`, *p.CategoryID).Scan(&p.CategoryName)
		if err != nil {
			_ = tx.Rollback()
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrCategoryNotFound
			default:
				return err
			}
		}
	}

	query := `
		INSERT INTO posts (author_id, title, slug, content, excerpt, category_id, category_name, tags, status, featured, read_time, seo_title, seo_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at, version`

	args := []any{p.AuthorID, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.CategoryName, pq.Array(p.Tags), p.Status, p.Featured, p.ReadTime, p.SEOTitle, p.SEODescription}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case ForeignKeyError(err, "posts_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	if p.CategoryID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET post_count = post_count + 1 WHERE id = $1`, *p.CategoryID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

const postColumns = `
	p.id, p.author_id, u.username, p.title, p.slug, p.content, p.excerpt,
	p.category_id, p.category_name, p.tags, p.status, p.featured,
	p.view_count, p.like_count, p.comment_count, p.read_time,
	p.seo_title, p.seo_description, p.created_at, p.updated_at, p.version`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
		&p.CategoryID, &p.CategoryName, pq.Array(&p.Tags), &p.Status, &p.Featured,
		&p.ViewCount, &p.LikeCount, &p.CommentCount, &p.ReadTime,
		&p.SEOTitle, &p.SEODescription, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &p, nil
}

func (m *PostModel) getByID(ctx context.Context, id int64) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`, postColumns)

	return scanPost(m.db.QueryRowContext(ctx, query, id))
}

func (m *PostModel) getBySlug(ctx context.Context, slug string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.slug = $1`, postColumns)

	return scanPost(m.db.QueryRowContext(ctx, query, slug))
}

func (m *PostModel) incrementViewCount(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// list pages over posts newest-first, applying only the filters that are set.
func (m *PostModel) list(ctx context.Context, f ListFilters) ([]Post, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) OVER(), %s
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE ($1 = '' OR p.status = $1)
		AND ($2 = '' OR p.category_name = $2)
		AND ($3 = '' OR $3 = ANY(p.tags))
		AND ($4 = 0 OR p.author_id = $4)
		AND ($5::boolean IS NULL OR p.featured = $5)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $6 OFFSET $7`, postColumns)

	offset := (f.Page - 1) * f.Limit

	rows, err := m.db.QueryContext(ctx, query, f.Status, f.Category, f.Tag, f.AuthorID, f.Featured, f.Limit, offset)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	total := 0
	posts := []Post{}

	for rows.Next() {
		var p Post
		err := rows.Scan(&total, &p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
			&p.CategoryID, &p.CategoryName, pq.Array(&p.Tags), &p.Status, &p.Featured,
			&p.ViewCount, &p.LikeCount, &p.CommentCount, &p.ReadTime,
			&p.SEOTitle, &p.SEODescription, &p.CreatedAt, &p.UpdatedAt, &p.Version)
		if err != nil {
			return nil, Metadata{}, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	meta := Metadata{
		Page:    f.Page,
		Limit:   f.Limit,
		Total:   total,
		HasNext: offset+len(posts) < total,
		HasPrev: f.Page > 1,
	}

	return posts, meta, nil
}

func (m *PostModel) search(ctx context.Context, q string, limit, offset int) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.status = 'published' AND (p.title ILIKE '%%' || $1 || '%%' OR p.content ILIKE '%%' || $1 || '%%')
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`, postColumns)

	rows, err := m.db.QueryContext(ctx, query, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
			&p.CategoryID, &p.CategoryName, pq.Array(&p.Tags), &p.Status, &p.Featured,
			&p.ViewCount, &p.LikeCount, &p.CommentCount, &p.ReadTime,
			&p.SEOTitle, &p.SEODescription, &p.CreatedAt, &p.UpdatedAt, &p.Version)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

// update rewrites the post and moves the category counter when the category
// changed. Optimistic locking on version.
func (m *PostModel) update(ctx context.Context, p *Post, oldCategoryID *int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if p.CategoryID != nil {
		err := tx.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1 AND active = true`, *p.CategoryID).Scan(&p.CategoryName)
		if err != nil {
			_ = tx.Rollback()
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrCategoryNotFound
			default:
				return err
			}
		}
	} else {
		p.CategoryName = ""
	}

	query := `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, excerpt = $4, category_id = $5, category_name = $6,
			tags = $7, status = $8, featured = $9, read_time = $10, seo_title = $11, seo_description = $12,
			updated_at = NOW(), version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING version, updated_at`

	args := []any{p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.CategoryName, pq.Array(p.Tags),
		p.Status, p.Featured, p.ReadTime, p.SEOTitle, p.SEODescription, p.ID, p.Version}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&p.Version, &p.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	oldID := int64(0)
	if oldCategoryID != nil {
		oldID = *oldCategoryID
	}
	newID := int64(0)
	if p.CategoryID != nil {
		newID = *p.CategoryID
	}

	if oldID != newID {
		if oldID != 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE categories SET post_count = post_count - 1 WHERE id = $1`, oldID); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if newID != 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE categories SET post_count = post_count + 1 WHERE id = $1`, newID); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}

func (m *PostModel) delete(ctx context.Context, id int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var categoryID *int64
	err = tx.QueryRowContext(ctx, `DELETE FROM posts WHERE id = $1 RETURNING category_id`, id).Scan(&categoryID)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	if categoryID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET post_count = post_count - 1 WHERE id = $1`, *categoryID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// toggleLike flips the (user, post) like row and updates the denormalized
// counter in the same transaction. The unique index on likes makes concurrent
// toggles safe.
func (m *PostModel) toggleLike(ctx context.Context, postID, userID int64) (*LikeResult, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var result LikeResult

	if deleted > 0 {
		err = tx.QueryRowContext(ctx, `UPDATE posts SET like_count = like_count - 1 WHERE id = $1 RETURNING like_count`, postID).Scan(&result.LikeCount)
		result.Liked = false
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT INTO likes (user_id, post_id) VALUES ($1, $2)`, userID, postID); err != nil {
			_ = tx.Rollback()
			switch {
			case ForeignKeyError(err, "likes_post_id_fkey"):
				return nil, ErrRecordNotFound
			default:
				return nil, err
			}
		}
		err = tx.QueryRowContext(ctx, `UPDATE posts SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`, postID).Scan(&result.LikeCount)
		result.Liked = true
	}

	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &result, nil
}
