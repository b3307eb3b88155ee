package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// UserRepo persists accounts.
type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page, perPage int) ([]models.User, response.Pagination, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductRepo persists catalog entries.
type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, response.Pagination, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CategoryRepo persists categories.
type CategoryRepo interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CartRepo persists shopping carts, both account-bound and anonymous.
type CartRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	UpsertByUserID(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error)
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.CartItem) (*models.Cart, error)
	CreateAnonymous(ctx context.Context, items []models.CartItem) (*models.Cart, error)
	DeleteStaleAnonymous(ctx context.Context, olderThan time.Time) (int64, error)
}

// OrderRepo persists orders.
type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, page, perPage int) ([]models.Order, response.Pagination, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
}
