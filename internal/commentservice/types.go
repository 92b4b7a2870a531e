package commentservice

import (
	"database/sql"
	"time"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

const (
	// MaxDepth caps reply nesting: depth 0, 1, 2 are allowed, so a thread is
	// at most three levels deep.
	MaxDepth = 2

	// DeletedPlaceholder replaces the content of soft-deleted comments.
	DeletedPlaceholder = "[deleted]"

	SortNewest = "newest"
	SortOldest = "oldest"

	// DefaultLimit is the only page size stored in the cache. The cache key
	// carries no limit, so pages fetched with another limit bypass it.
	DefaultLimit = 20
	MaxLimit     = 100
)

type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Content     string    `json:"content"`
	Path        string    `json:"path"`
	Depth       int       `json:"depth"`
	LikeCount   int       `json:"like_count"`
	ReportCount int       `json:"-"`
	Edited      bool      `json:"edited"`
	Deleted     bool      `json:"deleted"`
	Visible     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
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

type CommentService struct {
	m *CommentModel
	c *common.Cache
}

type CommentModel struct {
	db *sql.DB
}
