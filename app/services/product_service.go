package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/cache"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/response"
	"github.com/bloomkart/bloomkart/pkg/storage"
)

const (
	productCachePrefix = "product"
	productCacheTTL    = 5 * time.Minute

	minProductImages = 1
	maxProductImages = 5
)

// ProductService manages the product catalog. Images travel inline as data
// URIs; raw uploads are additionally archived on the storage disk so the
// originals survive outside the database.
type ProductService struct {
	products repositories.ProductRepo
}

// NewProductService wires the service to its product store.
func NewProductService(products repositories.ProductRepo) *ProductService {
	return &ProductService{products: products}
}

// ImageUpload is one raw multipart file destined for a product.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// ProductInput is the payload for creating or updating a product. Images
// holds ready-made data URIs (JSON clients); Uploads holds raw files
// (multipart clients). Both may be set; they are merged.
type ProductInput struct {
	Title        string  `json:"title" validate:"required,min=2,max=200"`
	Description  string  `json:"description" validate:"nullable,max=5000"`
	Price        float64 `json:"price" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	CategoryID   string  `json:"category_id" validate:"nullable"`
	CategoryName string  `json:"category_name" validate:"nullable"`
	Images       []string
	Uploads      []ImageUpload
}

type productPage struct {
	Items      []models.Product    `json:"items"`
	Pagination response.Pagination `json:"pagination"`
}

func listCacheKey(f repositories.ProductFilter) string {
	return fmt.Sprintf("products:%s:%s:%s:%s:%d:%d",
		f.CategoryID, strings.ToLower(f.CategoryName), strings.ToLower(f.Query),
		f.Sort, f.Page, f.PerPage)
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, response.Pagination, error) {
	key := listCacheKey(f)

	var cached productPage
	if cache.Get(ctx, key, &cached) {
		return cached.Items, cached.Pagination, nil
	}

	products, pagination, err := s.products.List(ctx, f)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	cache.Set(ctx, key, productPage{Items: products, Pagination: pagination}, productCacheTTL) //nolint:errcheck
	return products, pagination, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := "product:" + id.Hex()

	var cached models.Product
	if cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	cache.Set(ctx, key, p, productCacheTTL) //nolint:errcheck
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	images, keys, err := s.collectImages(ctx, in)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    models.CategoryRef{ID: in.CategoryID, Name: in.CategoryName},
		Images:      images,
		ArchiveKeys: keys,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.Stock = in.Stock
	if in.CategoryID != "" || in.CategoryName != "" {
		p.Category = models.CategoryRef{ID: in.CategoryID, Name: in.CategoryName}
	}

	// Replacing images is all-or-nothing: an update without any image fields
	// keeps the existing set.
	if len(in.Images) > 0 || len(in.Uploads) > 0 {
		images, keys, err := s.collectImages(ctx, in)
		if err != nil {
			return nil, err
		}
		p.Images = images
		p.ArchiveKeys = keys
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, asNotFound(err)
	}

	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return asNotFound(err)
	}
	s.invalidate(ctx)
	return nil
}

// collectImages merges inline data URIs with uploaded files, enforcing the
// 1..5 bound. Archiving to the storage disk is best-effort; the data URI in
// the document is the source of truth.
func (s *ProductService) collectImages(ctx context.Context, in ProductInput) ([]string, []string, error) {
	images := append([]string(nil), in.Images...)
	var keys []string

	for _, up := range in.Uploads {
		images = append(images, encodeDataURI(up.Data, up.ContentType))

		key := fmt.Sprintf("products/%s.%s", uuid.NewString(), extFor(up.ContentType))
		if err := storage.Put(key, up.Data, up.ContentType); err != nil {
			logger.WithCtx(ctx).Warn("product image archive failed", "key", key, "error", err)
			continue
		}
		keys = append(keys, key)
	}

	if len(images) < minProductImages || len(images) > maxProductImages {
		return nil, nil, ErrImageCount
	}
	return images, keys, nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	// Covers both the "products:*" listing keys and "product:<id>" entries.
	cache.DelPrefix(ctx, productCachePrefix) //nolint:errcheck
}

func encodeDataURI(data []byte, contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}
