package app

import (
	"time"

	"epaperadmin/internal/util"
	"epaperadmin/pkg/domain"
)

const defaultCategoryColor = "#007bff"

// CreateCategory inserts a category, deriving the slug from the name.
func (a *App) CreateCategory(cmd CreateCategory) (domain.Category, error) {
	if cmd.Name == "" {
		return domain.Category{}, domain.Validationf("category name is required")
	}
	color := cmd.Color
	if color == "" {
		color = defaultCategoryColor
	}
	now := time.Now().UTC()
	cat := domain.Category{
		Name:        cmd.Name,
		Slug:        util.Slugify(cmd.Name),
		Description: cmd.Description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := a.store.CreateCategory(cat)
	if err != nil {
		return domain.Category{}, err
	}
	cat.ID = id
	return cat, nil
}

// UpdateCategory rewrites a category; the slug follows the new name.
func (a *App) UpdateCategory(cmd UpdateCategory) (domain.Category, error) {
	if cmd.Name == "" {
		return domain.Category{}, domain.Validationf("category name is required")
	}
	existing, ok, err := a.store.GetCategory(cmd.ID)
	if err != nil {
		return domain.Category{}, err
	}
	if !ok {
		return domain.Category{}, domain.NotFound("category", cmd.ID)
	}
	color := cmd.Color
	if color == "" {
		color = defaultCategoryColor
	}
	cat := domain.Category{
		ID:          cmd.ID,
		Name:        cmd.Name,
		Slug:        util.Slugify(cmd.Name),
		Description: cmd.Description,
		Color:       color,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := a.store.UpdateCategory(cat); err != nil {
		return domain.Category{}, err
	}
	return cat, nil
}

// DeleteCategory removes the category and its edition links.
func (a *App) DeleteCategory(id int64) error {
	return a.store.DeleteCategory(id)
}

// ListCategories returns all categories ordered by name.
func (a *App) ListCategories() ([]domain.Category, error) {
	return a.store.ListCategories()
}
