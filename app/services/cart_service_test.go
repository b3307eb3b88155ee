package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/pkg/auth"
)

func TestNormalizeItems(t *testing.T) {
	raw := []RawCartItem{
		{ID: "p1", Name: "Red Roses", Price: 12.5, Quantity: float64(2)},
		{ProductID: "p2", Title: "Tulip Mix", Price: "9.99", Quantity: "3"},
		{LegacyID: "p3", Name: "Lilies", Price: 5, Quantity: 0},           // qty 0 -> 1
		{ID: "p4", Name: "Orchids", Price: 20, Quantity: nil},             // missing qty -> 1
		{ID: "p5", Name: "Free Ribbon", Price: float64(0), Quantity: 1},   // zero price is valid
		{ID: "", Name: "No ID", Price: 3, Quantity: 1},                    // dropped
		{ID: "p6", Name: "", Price: 3, Quantity: 1},                       // dropped
		{ID: "p7", Name: "Bad Price", Price: "not-a-number", Quantity: 1}, // dropped
	}

	items := NormalizeItems(raw)
	require.Len(t, items, 5)

	assert.Equal(t, models.CartItem{ProductID: "p1", Name: "Red Roses", Price: 12.5, Quantity: 2}, items[0])
	assert.Equal(t, models.CartItem{ProductID: "p2", Name: "Tulip Mix", Price: 9.99, Quantity: 3}, items[1])
	assert.Equal(t, 1, items[2].Quantity, "quantity below 1 defaults to 1")
	assert.Equal(t, 1, items[3].Quantity, "missing quantity defaults to 1")
	assert.Equal(t, 0.0, items[4].Price)
}

func TestNormalizeItemsEmptyInput(t *testing.T) {
	assert.NotNil(t, NormalizeItems(nil))
	assert.Empty(t, NormalizeItems(nil))
}

func TestSyncSignedInUserFindsOrCreates(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	c1, err := svc.Sync(ctx, userID.Hex(), "", []RawCartItem{
		{ID: "p1", Name: "Roses", Price: 10, Quantity: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, c1.UserID)
	assert.Equal(t, userID, *c1.UserID)

	// Second push replaces items on the same cart, ignoring any cart id the
	// client also happens to send.
	c2, err := svc.Sync(ctx, userID.Hex(), primitive.NewObjectID().Hex(), []RawCartItem{
		{ID: "p2", Name: "Tulips", Price: 8, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)
	require.Len(t, c2.Items, 1)
	assert.Equal(t, "p2", c2.Items[0].ProductID)
}

func TestSyncAnonymousRemembersCartID(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo)
	ctx := context.Background()

	c1, err := svc.Sync(ctx, "", "", []RawCartItem{{ID: "p1", Name: "Roses", Price: 10}})
	require.NoError(t, err)
	assert.Nil(t, c1.UserID)

	c2, err := svc.Sync(ctx, "", c1.ID.Hex(), []RawCartItem{{ID: "p2", Name: "Tulips", Price: 8}})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID, "remembered cart id addresses the same cart")
}

func TestSyncAnonymousStaleIDCreatesNewCart(t *testing.T) {
	svc := NewCartService(newFakeCartRepo())
	ctx := context.Background()

	gone := primitive.NewObjectID()
	c, err := svc.Sync(ctx, "", gone.Hex(), []RawCartItem{{ID: "p1", Name: "Roses", Price: 10}})
	require.NoError(t, err)
	assert.NotEqual(t, gone, c.ID)
}

func TestSyncAnonymousMalformedIDCreatesNewCart(t *testing.T) {
	svc := NewCartService(newFakeCartRepo())

	c, err := svc.Sync(context.Background(), "", "not-a-hex-id", nil)
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, c.ID)
}

func TestGetOwnershipRules(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	bound, err := svc.Sync(ctx, owner.Hex(), "", []RawCartItem{{ID: "p1", Name: "Roses", Price: 10}})
	require.NoError(t, err)
	anon, err := svc.Sync(ctx, "", "", nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, owner.Hex(), auth.RoleUser, bound.ID)
	assert.NoError(t, err, "owner can read own cart")

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex(), auth.RoleUser, bound.ID)
	assert.ErrorIs(t, err, ErrForbidden, "strangers cannot read a user-bound cart")

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex(), auth.RoleAdmin, bound.ID)
	assert.NoError(t, err, "admins can read any cart")

	_, err = svc.Get(ctx, "", "", anon.ID)
	assert.NoError(t, err, "anonymous carts are readable by id")

	_, err = svc.Get(ctx, "", "", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeStaleOnlyReapsAnonymous(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	bound, _ := repo.UpsertByUserID(ctx, userID, nil)
	anon, _ := repo.CreateAnonymous(ctx, nil)

	// Backdate both carts past the cutoff.
	for _, id := range []primitive.ObjectID{bound.ID, anon.ID} {
		c := repo.carts[id]
		c.UpdatedAt = time.Now().UTC().Add(-40 * 24 * time.Hour)
		repo.carts[id] = c
	}

	n, err := svc.PurgeStale(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindByUserID(ctx, userID)
	assert.NoError(t, err, "user carts are never reaped")
	_, err = repo.FindByID(ctx, anon.ID)
	assert.Error(t, err)
}
