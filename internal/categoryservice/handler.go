package categoryservice

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

var slugInvalidRX = regexp.MustCompile(`[^a-z0-9]+`)

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{m: newCategoryModel(db)}
}

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidRX.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func validateCategory(v *common.Validator, c *Category) {
	v.Check(c.Name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(c.Name, 2, 50), "name", "must be between 2 and 50 characters long")
	v.Check(v.CheckStringLength(c.Description, 0, 500), "description", "must not be more than 500 characters long")
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (s *CategoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	c := &Category{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Active:      true,
	}

	v := common.NewValidator()
	validateCategory(v, c)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.insert(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*Category, error) {
	v := common.NewValidator()
	v.Check(id > 0, "id", "must be greater than zero")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByID(ctx, id)
}

// List returns categories ordered by name. Non-admin callers only see active
// ones.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	return s.m.list(ctx, activeOnly)
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	Active      *bool   `json:"active"`
}

func (s *CategoryService) Update(ctx context.Context, id int64, req *UpdateCategoryRequest) (*Category, error) {
	c, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := req.Name != nil && *req.Name != c.Name
	if renamed {
		c.Name = *req.Name
		c.Slug = slugify(c.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	v := common.NewValidator()
	validateCategory(v, c)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.update(ctx, c, renamed); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	v := common.NewValidator()
	v.Check(id > 0, "id", "must be greater than zero")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.delete(ctx, id)
}
