package categoryservice

import (
	"database/sql"
	"time"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	PostCount   int       `json:"post_count"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryService struct {
	m *CategoryModel
}

type CategoryModel struct {
	db *sql.DB
}
