package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/event"
)

func newOrderFixture() (*OrderService, *fakeProductRepo, *fakeOrderRepo) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	return NewOrderService(orders, products), products, orders
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	svc, products, _ := newOrderFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	roses := products.add("Red Roses", 12.50)
	tulips := products.add("Tulip Mix", 9.99)

	o, err := svc.Create(ctx, userID.Hex(), []OrderItemInput{
		{ProductID: roses.Hex(), Quantity: 2},
		{ProductID: tulips.Hex(), Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, userID, o.UserID)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 12.50, o.Items[0].PriceAtPurchase)
	assert.Equal(t, "Red Roses", o.Items[0].Title)
	assert.Equal(t, 34.99, o.Total)
}

func TestCreateOrderIgnoresClientPrices(t *testing.T) {
	svc, products, _ := newOrderFixture()
	roses := products.add("Red Roses", 12.50)

	// The input type has no price field at all; this asserts the priced
	// result tracks the catalog even if the client cart claimed otherwise.
	o, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), []OrderItemInput{
		{ProductID: roses.Hex(), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.50, o.Total)
}

func TestCreateOrderUnknownProductFailsWholeOrder(t *testing.T) {
	svc, products, orders := newOrderFixture()
	roses := products.add("Red Roses", 12.50)

	_, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), []OrderItemInput{
		{ProductID: roses.Hex(), Quantity: 1},
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Empty(t, orders.orders, "nothing is persisted when any product is unknown")
}

func TestCreateOrderMalformedProductID(t *testing.T) {
	svc, _, _ := newOrderFixture()

	_, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), []OrderItemInput{
		{ProductID: "not-hex", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCreateOrderEmpty(t *testing.T) {
	svc, _, _ := newOrderFixture()
	_, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrderClampsQuantity(t *testing.T) {
	svc, products, _ := newOrderFixture()
	roses := products.add("Red Roses", 10)

	o, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), []OrderItemInput{
		{ProductID: roses.Hex(), Quantity: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, 10.0, o.Total)
}

func TestCreateOrderPublishesEvent(t *testing.T) {
	event.Reset()
	defer event.Reset()

	var got *models.Order
	event.Listen(EventOrderCreated, func(payload interface{}) {
		got, _ = payload.(*models.Order)
	})

	svc, products, _ := newOrderFixture()
	roses := products.add("Red Roses", 10)

	o, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), []OrderItemInput{
		{ProductID: roses.Hex(), Quantity: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, o.ID, got.ID)
}

func TestGetOrderOwnership(t *testing.T) {
	svc, products, _ := newOrderFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	roses := products.add("Red Roses", 10)

	o, err := svc.Create(ctx, owner.Hex(), []OrderItemInput{{ProductID: roses.Hex(), Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, owner.Hex(), auth.RoleUser, o.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex(), auth.RoleUser, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex(), auth.RoleAdmin, o.ID)
	assert.NoError(t, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, products, _ := newOrderFixture()
	ctx := context.Background()
	roses := products.add("Red Roses", 10)

	o, err := svc.Create(ctx, primitive.NewObjectID().Hex(), []OrderItemInput{{ProductID: roses.Hex(), Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, primitive.NewObjectID(), models.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}
