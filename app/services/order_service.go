package services

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/collection"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/event"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/metrics"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// Order events, published with the *models.Order as payload.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderService prices and records checkouts. Clients only name products and
// quantities; every price comes from the catalog at creation time.
type OrderService struct {
	orders   repositories.OrderRepo
	products repositories.ProductRepo
}

// NewOrderService wires the service to its stores.
func NewOrderService(orders repositories.OrderRepo, products repositories.ProductRepo) *OrderService {
	return &OrderService{orders: orders, products: products}
}

// OrderItemInput names one product in a checkout.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// Create resolves every referenced product, prices the order from the
// current catalog and records it as pending. Any unknown or malformed
// product id fails the whole order with ErrUnknownProduct.
func (s *OrderService) Create(ctx context.Context, userIDHex string, inputs []OrderItemInput) (*models.Order, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyOrder
	}

	userID, err := database.ParseID(userIDHex)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(inputs))
	for _, in := range inputs {
		id, err := database.ParseID(in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, in.ProductID)
		}
		ids = append(ids, id)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := collection.KeyBy(products, func(p models.Product) primitive.ObjectID { return p.ID })

	items := make([]models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		p, ok := byID[ids[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, in.ProductID)
		}

		qty := in.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ProductID:       p.ID,
			Title:           p.Title,
			Quantity:        qty,
			PriceAtPurchase: p.Price,
		})
	}

	total := collection.Sum(items, func(it models.OrderItem) float64 {
		return it.PriceAtPurchase * float64(it.Quantity)
	})

	o := &models.Order{
		UserID: userID,
		Items:  items,
		Total:  math.Round(total*100) / 100,
		Status: models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	event.Dispatch(EventOrderCreated, o)
	logger.WithCtx(ctx).Info("order created",
		"order_id", o.ID.Hex(), "user_id", userIDHex, "total", o.Total)
	return o, nil
}

// Get fetches one order, visible to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, requesterID, role string, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	if o.UserID.Hex() != requesterID && role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListForUser returns a user's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userIDHex string) ([]models.Order, error) {
	userID, err := database.ParseID(userIDHex)
	if err != nil {
		return nil, err
	}
	return s.orders.FindByUserID(ctx, userID)
}

// List returns all orders paginated. Admin only; the route enforces it.
func (s *OrderService) List(ctx context.Context, page, perPage int) ([]models.Order, response.Pagination, error) {
	return s.orders.List(ctx, page, perPage)
}

// UpdateStatus moves an order to a new status.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	if !collection.Contains(models.OrderStatuses, func(s string) bool { return s == status }) {
		return nil, ErrInvalidStatus
	}

	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, asNotFound(err)
	}

	event.Dispatch(EventOrderUpdated, o)
	return o, nil
}
