package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/metrics"
)

// CartRepository is the MongoDB-backed CartRepo.
type CartRepository struct {
	col *mongo.Collection
}

// NewCartRepository returns a repository over the carts collection.
func NewCartRepository() *CartRepository {
	return &CartRepository{col: database.Collection("carts")}
}

func (r *CartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	defer metrics.ObserveMongo("carts", "find")()

	var c models.Cart
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, fmt.Errorf("repositories: find cart %s: %w", id.Hex(), err)
	}
	return &c, nil
}

func (r *CartRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	defer metrics.ObserveMongo("carts", "find")()

	var c models.Cart
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c); err != nil {
		return nil, fmt.Errorf("repositories: find cart for user %s: %w", userID.Hex(), err)
	}
	return &c, nil
}

// UpsertByUserID replaces the items of the user's cart, creating the cart if
// none exists yet. The partial unique index on user_id makes concurrent
// first-syncs collapse onto a single document.
func (r *CartRepository) UpsertByUserID(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	defer metrics.ObserveMongo("carts", "upsert")()

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"items": items, "updated_at": now},
		"$setOnInsert": bson.M{"user_id": userID, "created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c models.Cart
	err := r.col.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("repositories: upsert cart for user %s: %w", userID.Hex(), err)
	}
	return &c, nil
}

func (r *CartRepository) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	defer metrics.ObserveMongo("carts", "update")()

	update := bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.Cart
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("repositories: replace cart %s items: %w", id.Hex(), err)
	}
	return &c, nil
}

func (r *CartRepository) CreateAnonymous(ctx context.Context, items []models.CartItem) (*models.Cart, error) {
	defer metrics.ObserveMongo("carts", "insert")()

	now := time.Now().UTC()
	c := &models.Cart{Items: items, CreatedAt: now, UpdatedAt: now}

	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("repositories: insert anonymous cart: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

// DeleteStaleAnonymous removes anonymous carts not touched since olderThan.
// Carts bound to a user are never reaped.
func (r *CartRepository) DeleteStaleAnonymous(ctx context.Context, olderThan time.Time) (int64, error) {
	defer metrics.ObserveMongo("carts", "delete")()

	res, err := r.col.DeleteMany(ctx, bson.M{
		"user_id":    bson.M{"$exists": false},
		"updated_at": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return 0, fmt.Errorf("repositories: delete stale carts: %w", err)
	}
	return res.DeletedCount, nil
}
