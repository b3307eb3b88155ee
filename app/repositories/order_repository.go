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
	"github.com/bloomkart/bloomkart/pkg/response"
)

// OrderRepository is the MongoDB-backed OrderRepo.
type OrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository returns a repository over the orders collection.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{col: database.Collection("orders")}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveMongo("orders", "insert")()

	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("repositories: insert order: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	defer metrics.ObserveMongo("orders", "find")()

	var o models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, fmt.Errorf("repositories: find order %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	defer metrics.ObserveMongo("orders", "list")()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: list orders for user %s: %w", userID.Hex(), err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("repositories: decode orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) List(ctx context.Context, page, perPage int) ([]models.Order, response.Pagination, error) {
	defer metrics.ObserveMongo("orders", "list")()

	page, perPage = normalizePage(page, perPage)

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: list orders: %w", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: decode orders: %w", err)
	}
	return orders, buildPagination(page, perPage, total), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	defer metrics.ObserveMongo("orders", "update")()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&o); err != nil {
		return nil, fmt.Errorf("repositories: update order %s status: %w", id.Hex(), err)
	}
	return &o, nil
}
