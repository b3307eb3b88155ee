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

// CategoryRepository is the MongoDB-backed CategoryRepo.
type CategoryRepository struct {
	col *mongo.Collection
}

// NewCategoryRepository returns a repository over the categories collection.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{col: database.Collection("categories")}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	defer metrics.ObserveMongo("categories", "insert")()

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("repositories: insert category: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	defer metrics.ObserveMongo("categories", "find")()

	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, fmt.Errorf("repositories: find category %s: %w", id.Hex(), err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveMongo("categories", "list")()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: list categories: %w", err)
	}

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("repositories: decode categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	defer metrics.ObserveMongo("categories", "update")()

	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("repositories: update category %s: %w", c.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("repositories: update category %s: %w", c.ID.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongo("categories", "delete")()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete category %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("repositories: delete category %s: %w", id.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}
