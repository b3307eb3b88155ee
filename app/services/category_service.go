package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/cache"
	"github.com/bloomkart/bloomkart/pkg/database"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = 10 * time.Minute
	slugMaxLen       = 60
)

// CategoryService manages the category catalog.
type CategoryService struct {
	categories repositories.CategoryRepo
}

// NewCategoryService wires the service to its category store.
func NewCategoryService(categories repositories.CategoryRepo) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name  string `json:"name" validate:"required,min=2,max=80"`
	Image string `json:"image" validate:"nullable,url"`
}

// Slugify derives a URL-safe slug: lowercased, punctuation stripped, runs of
// separators collapsed to single hyphens, capped at 60 characters.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}

	slug := b.String()
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	return slug
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if cache.Get(ctx, categoryCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	cache.Set(ctx, categoryCacheKey, categories, categoryCacheTTL) //nolint:errcheck
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	c := &models.Category{
		Name:  strings.TrimSpace(in.Name),
		Slug:  Slugify(in.Name),
		Image: in.Image,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	cache.Del(ctx, categoryCacheKey) //nolint:errcheck
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Slug = Slugify(in.Name)
	if in.Image != "" {
		c.Image = in.Image
	}

	if err := s.categories.Update(ctx, c); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, asNotFound(err)
	}

	cache.Del(ctx, categoryCacheKey) //nolint:errcheck
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return asNotFound(err)
	}
	cache.Del(ctx, categoryCacheKey) //nolint:errcheck
	return nil
}
