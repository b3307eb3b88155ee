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

// ProductRepository is the MongoDB-backed ProductRepo.
type ProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository returns a repository over the products collection.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{col: database.Collection("products")}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveMongo("products", "insert")()

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("repositories: insert product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	defer metrics.ObserveMongo("products", "find")()

	var p models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, fmt.Errorf("repositories: find product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	defer metrics.ObserveMongo("products", "find")()

	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("repositories: find products by ids: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, response.Pagination, error) {
	defer metrics.ObserveMongo("products", "list")()

	page, perPage := normalizePage(f.Page, f.PerPage)
	query := buildProductQuery(f)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: count products: %w", err)
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch f.Sort {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: list products: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, response.Pagination{}, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, buildPagination(page, perPage, total), nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveMongo("products", "update")()

	p.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("repositories: update product %s: %w", p.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("repositories: update product %s: %w", p.ID.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongo("products", "delete")()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("repositories: delete product %s: %w", id.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}
