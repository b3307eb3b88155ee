package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/metrics"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// UserRepository is the MongoDB-backed UserRepo.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository returns a repository over the users collection.
func NewUserRepository() *UserRepository {
	return &UserRepository{col: database.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveMongo("users", "insert")()

	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = now, now

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("repositories: insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer metrics.ObserveMongo("users", "find")()

	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, fmt.Errorf("repositories: find user %s: %w", id.Hex(), err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveMongo("users", "find")()

	email = strings.ToLower(strings.TrimSpace(email))
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, fmt.Errorf("repositories: find user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, page, perPage int) ([]models.User, response.Pagination, error) {
	defer metrics.ObserveMongo("users", "list")()

	page, perPage = normalizePage(page, perPage)

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: list users: %w", err)
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: decode users: %w", err)
	}
	return users, buildPagination(page, perPage, total), nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	defer metrics.ObserveMongo("users", "update")()

	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("repositories: update user %s: %w", u.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("repositories: update user %s: %w", u.ID.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongo("users", "delete")()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete user %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("repositories: delete user %s: %w", id.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}
