package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/collection"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/metrics"
)

// CartService reconciles client carts with their server copies. Clients hold
// the working cart and push full replacements; the server stores one cart
// per signed-in user and any number of anonymous carts addressed by id.
type CartService struct {
	carts repositories.CartRepo
}

// NewCartService wires the service to its cart store.
func NewCartService(carts repositories.CartRepo) *CartService {
	return &CartService{carts: carts}
}

// RawCartItem is a cart line as clients actually send it. Field names and
// scalar types drifted across client versions, so everything flexible is
// typed loosely and normalized before touching storage.
type RawCartItem struct {
	ID        string      `json:"id"`
	ProductID string      `json:"product_id"`
	LegacyID  string      `json:"productId"`
	Name      string      `json:"name"`
	Title     string      `json:"title"`
	Price     interface{} `json:"price"`
	Image     string      `json:"image"`
	Quantity  interface{} `json:"quantity"`
}

// NormalizeItems turns raw client lines into storable cart items. Lines
// without a usable product id or name are dropped; quantities below 1 (or
// unparseable) become 1; prices are coerced to numbers, with unparseable
// prices dropping the line.
func NormalizeItems(raw []RawCartItem) []models.CartItem {
	normalized := collection.Map(raw, normalizeItem)
	kept := collection.Filter(normalized, func(it models.CartItem) bool {
		return it.ProductID != "" && it.Name != "" && it.Price >= 0
	})
	if kept == nil {
		kept = []models.CartItem{}
	}
	return kept
}

func normalizeItem(r RawCartItem) models.CartItem {
	id := firstNonEmpty(r.ID, r.ProductID, r.LegacyID)
	name := firstNonEmpty(r.Name, r.Title)

	qty := coerceInt(r.Quantity)
	if qty < 1 {
		qty = 1
	}

	price, ok := coerceFloat(r.Price)
	if !ok || price < 0 {
		price = -1 // marks the line for dropping
	}

	return models.CartItem{
		ProductID: id,
		Name:      name,
		Price:     price,
		Image:     r.Image,
		Quantity:  qty,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func coerceInt(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Sync pushes a full cart replacement and returns the server copy.
// A signed-in user's cart is found (or created) by user id; an anonymous
// push with a remembered cart id replaces that cart; anything else creates a
// fresh anonymous cart whose id the client keeps.
func (s *CartService) Sync(ctx context.Context, userIDHex, cartIDHex string, raw []RawCartItem) (*models.Cart, error) {
	items := NormalizeItems(raw)

	c, err := s.sync(ctx, userIDHex, cartIDHex, items)
	if err != nil {
		metrics.CartSyncs.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CartSyncs.WithLabelValues("ok").Inc()
	return c, nil
}

func (s *CartService) sync(ctx context.Context, userIDHex, cartIDHex string, items []models.CartItem) (*models.Cart, error) {
	if userIDHex != "" {
		userID, err := database.ParseID(userIDHex)
		if err != nil {
			return nil, err
		}
		return s.carts.UpsertByUserID(ctx, userID, items)
	}

	if cartIDHex != "" {
		cartID, err := database.ParseID(cartIDHex)
		if err == nil {
			c, err := s.carts.ReplaceItems(ctx, cartID, items)
			if err == nil {
				return c, nil
			}
			if !database.IsNoDocuments(err) {
				return nil, err
			}
			// Remembered id points at a reaped cart; fall through and mint
			// a new one.
			logger.WithCtx(ctx).Debug("cart sync: stale cart id, creating new", "cart_id", cartIDHex)
		}
	}

	return s.carts.CreateAnonymous(ctx, items)
}

// Get fetches a cart by id. User-bound carts are only visible to their owner
// or an admin; anonymous carts are visible to whoever holds the id.
func (s *CartService) Get(ctx context.Context, requesterID, role string, id primitive.ObjectID) (*models.Cart, error) {
	c, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	if c.UserID != nil && c.UserID.Hex() != requesterID && role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return c, nil
}

// GetByUser fetches the cart bound to a user id, for the owner or an admin.
func (s *CartService) GetByUser(ctx context.Context, requesterID, role string, userID primitive.ObjectID) (*models.Cart, error) {
	if userID.Hex() != requesterID && role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return c, nil
}

// PurgeStale deletes anonymous carts untouched for longer than maxAge.
// Run daily by the scheduler.
func (s *CartService) PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.carts.DeleteStaleAnonymous(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("stale anonymous carts purged", "count", n)
	}
	return n, nil
}
