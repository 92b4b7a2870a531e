package categoryservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("category not found")
	ErrDuplicateName  = errors.New("duplicate category name")
	ErrDuplicateSlug  = errors.New("duplicate category slug")
	ErrCategoryInUse  = errors.New("category has posts assigned")
)

func newCategoryModel(db *sql.DB) *CategoryModel {
	return &CategoryModel{db: db}
}

func duplicateKeyError(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}

func (m *CategoryModel) insert(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug, description, icon, color, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, post_count, created_at, updated_at`

	err := m.db.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description, c.Icon, c.Color, c.Active).Scan(&c.ID, &c.PostCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case duplicateKeyError(err, "categories_name_key"):
			return ErrDuplicateName
		case duplicateKeyError(err, "categories_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *CategoryModel) getByID(ctx context.Context, id int64) (*Category, error) {
	query := `
		SELECT id, name, slug, description, icon, color, post_count, active, created_at, updated_at
		FROM categories
		WHERE id = $1`

	var c Category

	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color, &c.PostCount, &c.Active, &c.CreatedAt, &c.UpdatedAt)
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

func (m *CategoryModel) list(ctx context.Context, activeOnly bool) ([]Category, error) {
	query := `
		SELECT id, name, slug, description, icon, color, post_count, active, created_at, updated_at
		FROM categories
		WHERE ($1 = false OR active = true)
		ORDER BY name ASC`

	rows, err := m.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color, &c.PostCount, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// update writes the category and, on a rename, refreshes the denormalized
// category_name column on its posts in the same transaction.
func (m *CategoryModel) update(ctx context.Context, c *Category, renamed bool) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, icon = $4, color = $5, active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err = tx.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description, c.Icon, c.Color, c.Active, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case duplicateKeyError(err, "categories_name_key"):
			return ErrDuplicateName
		case duplicateKeyError(err, "categories_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	if renamed {
		_, err = tx.ExecContext(ctx, `UPDATE posts SET category_name = $1 WHERE category_id = $2`, c.Name, c.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (m *CategoryModel) delete(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND post_count = 0`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		err = m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return ErrCategoryInUse
		}
		return ErrRecordNotFound
	}

	return nil
}
