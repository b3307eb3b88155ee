// Package seeders populates a fresh database with an admin account and a
// starter catalog. Seeding is idempotent: records that already exist are
// skipped.
package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/logger"
)

// A 1x1 transparent PNG; placeholder until real photos are uploaded.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// Run seeds the admin user, categories and sample products.
func Run(ctx context.Context) error {
	users := services.NewUserService(repositories.NewUserRepository())
	categories := services.NewCategoryService(repositories.NewCategoryRepository())
	products := services.NewProductService(repositories.NewProductRepository())

	if err := seedAdmin(ctx, users); err != nil {
		return err
	}

	catalog := map[string][]struct {
		title string
		price float64
	}{
		"Fresh Cut Flowers": {
			{"Red Rose Bouquet", 34.99},
			{"Tulip Mix", 24.99},
			{"White Lily Arrangement", 42.50},
		},
		"Dried Flowers": {
			{"Dried Lavender Bundle", 18.00},
			{"Pampas Grass Stems", 22.00},
		},
		"Pot Plants": {
			{"Monstera Deliciosa", 49.99},
			{"Snake Plant", 29.99},
		},
	}

	for name, items := range catalog {
		cat, err := categories.Create(ctx, services.CategoryInput{Name: name})
		if err != nil {
			if errors.Is(err, services.ErrNameTaken) {
				logger.Debug("seed: category exists, skipping", "name", name)
				continue
			}
			return fmt.Errorf("seeders: category %s: %w", name, err)
		}

		for _, item := range items {
			_, err := products.Create(ctx, services.ProductInput{
				Title:        item.title,
				Price:        item.price,
				Stock:        25,
				CategoryID:   cat.ID.Hex(),
				CategoryName: cat.Name,
				Images:       []string{placeholderImage},
			})
			if err != nil {
				return fmt.Errorf("seeders: product %s: %w", item.title, err)
			}
		}
		logger.Info("seed: category created", "name", name, "products", len(items))
	}

	return nil
}

func seedAdmin(ctx context.Context, users *services.UserService) error {
	email := config.Get("SEED_ADMIN_EMAIL", "admin@bloomkart.shop")
	password := config.Get("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		return errors.New("seeders: SEED_ADMIN_PASSWORD must be set")
	}

	_, err := users.Create(ctx, services.CreateUserInput{
		Email:    email,
		Password: password,
		FullName: "Store Admin",
		Role:     auth.RoleAdmin,
	})
	if errors.Is(err, services.ErrEmailTaken) {
		logger.Debug("seed: admin exists, skipping", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seeders: admin user: %w", err)
	}

	logger.Info("seed: admin user created", "email", email)
	return nil
}
