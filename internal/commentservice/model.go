package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("comment not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrParentNotFound   = errors.New("parent comment not found")
	ErrParentMismatch   = errors.New("parent comment belongs to another post")
	ErrMaxDepthExceeded = errors.New("maximum reply depth exceeded")
	ErrCommentDeleted   = errors.New("comment has been deleted")
	ErrNotOwner         = errors.New("not the comment author")
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

func foreignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503" && pqErr.Constraint == name
	}
	return false
}

const commentColumns = `
	c.id, c.post_id, c.parent_id, c.user_id, u.username, c.content, c.path, c.depth,
	c.like_count, c.report_count, c.edited, c.deleted, c.visible, c.created_at, c.updated_at`

func scanComment(row interface{ Scan(...any) error }) (*Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.ParentID, &c.UserID, &c.Username, &c.Content, &c.Path, &c.Depth,
		&c.LikeCount, &c.ReportCount, &c.Edited, &c.Deleted, &c.Visible, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &c, nil
}

func (m *CommentModel) getByID(ctx context.Context, id int64) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.id = $1`, commentColumns)

	return scanComment(m.db.QueryRowContext(ctx, query, id))
}

// insert creates a comment and bumps the post counter in one transaction. The
// materialized path is parent path + "/" + id, written once the id is known.
func (m *CommentModel) insert(ctx context.Context, c *Comment) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, c.PostID).Scan(&exists); err != nil {
		_ = tx.Rollback()
		return err
	}
	if !exists {
		_ = tx.Rollback()
		return ErrPostNotFound
	}

	parentPath := ""
	if c.ParentID != nil {
		var parent struct {
			postID int64
			path   string
			depth  int
		}
		err := tx.QueryRowContext(ctx, `SELECT post_id, path, depth FROM comments WHERE id = $1`, *c.ParentID).Scan(&parent.postID, &parent.path, &parent.depth)
		if err != nil {
			_ = tx.Rollback()
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrParentNotFound
			default:
				return err
			}
		}

		if parent.postID != c.PostID {
			_ = tx.Rollback()
			return ErrParentMismatch
		}
		if parent.depth >= MaxDepth {
			_ = tx.Rollback()
			return ErrMaxDepthExceeded
		}

		c.Depth = parent.depth + 1
		parentPath = parent.path
	}

	query := `
		INSERT INTO comments (post_id, parent_id, user_id, content, depth)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query, c.PostID, c.ParentID, c.UserID, c.Content, c.Depth).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	c.Path = fmt.Sprintf("%s/%d", parentPath, c.ID)
	c.Visible = true

	if _, err := tx.ExecContext(ctx, `UPDATE comments SET path = $1 WHERE id = $2`, c.Path, c.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, c.PostID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// listByPost pages the flat comment table in thread order: rows sort by the
// root id of their path so whole threads stay together, and replies follow
// their ancestors by path prefix.
func (m *CommentModel) listByPost(ctx context.Context, postID int64, limit, offset int, sort string) ([]Comment, int, error) {
	order := `split_part(c.path, '/', 2)::bigint DESC, c.path ASC`
	if sort == SortOldest {
		order = `split_part(c.path, '/', 2)::bigint ASC, c.path ASC`
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) OVER(), %s
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = $1 AND c.visible = true
		ORDER BY %s
		LIMIT $2 OFFSET $3`, commentColumns, order)

	rows, err := m.db.QueryContext(ctx, query, postID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	comments := []Comment{}

	for rows.Next() {
		var c Comment
		err := rows.Scan(&total, &c.ID, &c.PostID, &c.ParentID, &c.UserID, &c.Username, &c.Content, &c.Path, &c.Depth,
			&c.LikeCount, &c.ReportCount, &c.Edited, &c.Deleted, &c.Visible, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, c)
	}

	return comments, total, rows.Err()
}

func (m *CommentModel) update(ctx context.Context, c *Comment) error {
	query := `
		UPDATE comments
		SET content = $1, edited = true, updated_at = NOW()
		WHERE id = $2 AND deleted = false
		RETURNING updated_at`

	err := m.db.QueryRowContext(ctx, query, c.Content, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	c.Edited = true

	return nil
}

// softDelete keeps the row so descendants stay reachable: only the flag flips
// and the content is scrubbed. The post counter moves in the same transaction.
func (m *CommentModel) softDelete(ctx context.Context, id, postID int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE comments
		SET deleted = true, content = $1, updated_at = NOW()
		WHERE id = $2 AND deleted = false`, DeletedPlaceholder, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if rows == 0 {
		_ = tx.Rollback()
		return ErrRecordNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count - 1 WHERE id = $1`, postID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (m *CommentModel) toggleLike(ctx context.Context, commentID, userID int64) (*LikeResult, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND comment_id = $2`, userID, commentID)
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
		err = tx.QueryRowContext(ctx, `UPDATE comments SET like_count = like_count - 1 WHERE id = $1 RETURNING like_count`, commentID).Scan(&result.LikeCount)
		result.Liked = false
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT INTO likes (user_id, comment_id) VALUES ($1, $2)`, userID, commentID); err != nil {
			_ = tx.Rollback()
			if foreignKeyError(err, "likes_comment_id_fkey") {
				return nil, ErrRecordNotFound
			}
			return nil, err
		}
		err = tx.QueryRowContext(ctx, `UPDATE comments SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`, commentID).Scan(&result.LikeCount)
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
