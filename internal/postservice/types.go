package postservice

import (
	"database/sql"
	"time"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

type Post struct {
	ID             int64      `json:"id"`
	AuthorID       int64      `json:"author_id"`
	AuthorName     string     `json:"author_name,omitempty"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	CategoryID     *int64     `json:"category_id,omitempty"`
	CategoryName   string     `json:"category_name,omitempty"`
	Tags           []string   `json:"tags"`
	Status         PostStatus `json:"status"`
	Featured       bool       `json:"featured"`
	ViewCount      int        `json:"view_count"`
	LikeCount      int        `json:"like_count"`
	CommentCount   int        `json:"comment_count"`
	ReadTime       int        `json:"read_time"`
	SEOTitle       string     `json:"seo_title,omitempty"`
	SEODescription string     `json:"seo_description,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// ListFilters narrows and pages the post listing. Every distinct combination
// maps to its own cache key.
type ListFilters struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
	AuthorID int64  `json:"author_id,omitempty"`
	Featured *bool  `json:"featured,omitempty"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

type Metadata struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type PostService struct {
	m *PostModel
	c *common.Cache
}

type PostModel struct {
	db *sql.DB
}
