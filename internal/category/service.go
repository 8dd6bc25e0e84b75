package category

import (
	"context"
	"strings"

	"storvbox-be/internal/utils"
)

type Service interface {
	GetCategories(ctx context.Context, filter *string) ([]*Category, error)
	AddCategory(ctx context.Context, in CreateInput) (*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetCategories(ctx context.Context, filter *string) ([]*Category, error) {
	return s.repo.GetCategories(ctx, filter)
}

// AddCategory derives the slug from the name when none is given.
func (s *service) AddCategory(ctx context.Context, in CreateInput) (*Category, error) {
	var v utils.Validator
	v.Length(in.Name, 2, 100, "name", "Името на категорията трябва да е между 2 и 100 символа")
	if err := v.Err(); err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}

	return s.repo.AddCategory(ctx, Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
	})
}
