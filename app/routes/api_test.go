package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/response"
	"github.com/bloomkart/bloomkart/pkg/router"
	"github.com/bloomkart/bloomkart/pkg/ws"
)

// In-memory repositories so the whole HTTP surface is exercisable without a
// running MongoDB.

type memUsers struct{ byID map[primitive.ObjectID]models.User }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, ex := range m.byID {
		if ex.Email == u.Email {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	u.ID = primitive.NewObjectID()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUsers) List(_ context.Context, page, perPage int) ([]models.User, response.Pagination, error) {
	out := []models.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, response.Pagination{Page: 1, PerPage: len(out), Total: int64(len(out)), TotalPages: 1}, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.byID[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.byID, id)
	return nil
}

type memProducts struct{ byID map[primitive.ObjectID]models.Product }

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) List(_ context.Context, _ repositories.ProductFilter) ([]models.Product, response.Pagination, error) {
	out := []models.Product{}
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, response.Pagination{Page: 1, PerPage: len(out), Total: int64(len(out)), TotalPages: 1}, nil
}

func (m *memProducts) Update(_ context.Context, p *models.Product) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.byID, id)
	return nil
}

type memCategories struct{ byID map[primitive.ObjectID]models.Category }

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	for _, ex := range m.byID {
		if ex.Name == c.Name {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	c.ID = primitive.NewObjectID()
	m.byID[c.ID] = *c
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &c, nil
}

func (m *memCategories) FindAll(_ context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) error {
	m.byID[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.byID, id)
	return nil
}

type memCarts struct{ byID map[primitive.ObjectID]models.Cart }

func (m *memCarts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Cart, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &c, nil
}

func (m *memCarts) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	for _, c := range m.byID {
		if c.UserID != nil && *c.UserID == userID {
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memCarts) UpsertByUserID(_ context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	for id, c := range m.byID {
		if c.UserID != nil && *c.UserID == userID {
			c.Items = items
			m.byID[id] = c
			return &c, nil
		}
	}
	c := models.Cart{ID: primitive.NewObjectID(), UserID: &userID, Items: items}
	m.byID[c.ID] = c
	return &c, nil
}

func (m *memCarts) ReplaceItems(_ context.Context, id primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c.Items = items
	m.byID[id] = c
	return &c, nil
}

func (m *memCarts) CreateAnonymous(_ context.Context, items []models.CartItem) (*models.Cart, error) {
	c := models.Cart{ID: primitive.NewObjectID(), Items: items}
	m.byID[c.ID] = c
	return &c, nil
}

func (m *memCarts) DeleteStaleAnonymous(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memOrders struct{ byID map[primitive.ObjectID]models.Order }

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &o, nil
}

func (m *memOrders) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) List(_ context.Context, page, perPage int) ([]models.Order, response.Pagination, error) {
	out := []models.Order{}
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, response.Pagination{Page: 1, PerPage: len(out), Total: int64(len(out)), TotalPages: 1}, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	o.Status = status
	m.byID[id] = o
	return &o, nil
}

type fixture struct {
	handler  http.Handler
	products *memProducts
	users    *memUsers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &memUsers{byID: map[primitive.ObjectID]models.User{}}
	products := &memProducts{byID: map[primitive.ObjectID]models.Product{}}

	deps := Deps{
		Auth:       services.NewAuthService(users),
		Users:      services.NewUserService(users),
		Products:   services.NewProductService(products),
		Categories: services.NewCategoryService(&memCategories{byID: map[primitive.ObjectID]models.Category{}}),
		Carts:      services.NewCartService(&memCarts{byID: map[primitive.ObjectID]models.Cart{}}),
		Orders:     services.NewOrderService(&memOrders{byID: map[primitive.ObjectID]models.Order{}}, products),
		Hub:        ws.NewHub(),
	}

	r := router.New()
	require.NoError(t, Register(r, deps))
	return &fixture{handler: r.Handler(), products: products, users: users}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (f *fixture) tokenFor(t *testing.T, role string) string {
	t.Helper()
	u := models.User{Email: fmt.Sprintf("%s@test.local", primitive.NewObjectID().Hex()), Role: role}
	require.NoError(t, f.users.Create(context.Background(), &u))
	token, err := auth.GenerateToken(u.ID.Hex(), role)
	require.NoError(t, err)
	return token
}

func TestRegisterLoginMeFlow(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "shopper@test.local", "password": "sup3rsecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.Token)

	rec, env = f.do(t, http.MethodGet, "/api/auth/me", created.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "shopper@test.local", me.Email)

	// Second registration with the same email conflicts.
	rec, _ = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "shopper@test.local", "password": "another-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotNil(t, env.Errors, "validation failures carry a field error map")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "shopper@test.local", "password": "sup3rsecret",
	})

	rec, _ := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "shopper@test.local", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAdminGate(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	rec, _ = f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "plain user")

	rec, _ = f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code, "admin")
}

func TestProductWritesAreAdminOnly(t *testing.T) {
	f := newFixture(t)
	body := map[string]interface{}{
		"title": "Red Roses", "price": 12.5,
		"images": []string{"data:image/png;base64,xx"},
	}

	rec, _ := f.do(t, http.MethodPost, "/api/products", f.tokenFor(t, auth.RoleUser), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/products", f.tokenFor(t, auth.RoleAdmin), body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestProductImageBoundIsEnforced(t *testing.T) {
	f := newFixture(t)
	admin := f.tokenFor(t, auth.RoleAdmin)

	rec, _ := f.do(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"title": "No Images", "price": 5, "images": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	six := make([]string, 6)
	for i := range six {
		six[i] = "data:image/png;base64,xx"
	}
	rec, _ = f.do(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"title": "Too Many", "price": 5, "images": six,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductListIsPublic(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.products.byID[id] = models.Product{ID: id, Title: "Red Roses", Price: 12.5}

	rec, env := f.do(t, http.MethodGet, "/api/products?category=abc&sort=price_asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []models.Product `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
}

func TestMalformedIDIs400(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/products/not-a-hex-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownProductIs404(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartSyncAnonymousRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/cart/sync", "", map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": "p1", "name": "Roses", "price": 12.5, "quantity": "2"},
			{"name": "No ID", "price": 3}, // dropped
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart models.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Push again with the remembered id; same cart comes back.
	rec, env = f.do(t, http.MethodPost, "/api/cart/sync", "", map[string]interface{}{
		"cart_id": cart.ID.Hex(),
		"items":   []map[string]interface{}{{"id": "p2", "name": "Tulips", "price": 8}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var second models.Cart
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, cart.ID, second.ID)
}

func TestCartSyncAuthenticatedKeysByUser(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, auth.RoleUser)

	rec, env := f.do(t, http.MethodPost, "/api/cart/sync", token, map[string]interface{}{
		"items": []map[string]interface{}{{"id": "p1", "name": "Roses", "price": 10}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.NotNil(t, cart.UserID)
}

func TestOrderCreation(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, auth.RoleUser)

	roses := primitive.NewObjectID()
	f.products.byID[roses] = models.Product{ID: roses, Title: "Red Roses", Price: 12.5}

	// Unknown product in the set fails the whole order with 400.
	rec, _ := f.do(t, http.MethodPost, "/api/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": roses.Hex(), "quantity": 1},
			{"product_id": primitive.NewObjectID().Hex(), "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/api/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": roses.Hex(), "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, 25.0, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	// Anonymous checkout is rejected.
	rec, _ = f.do(t, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": roses.Hex(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrderStatusRoute(t *testing.T) {
	f := newFixture(t)
	user := f.tokenFor(t, auth.RoleUser)
	admin := f.tokenFor(t, auth.RoleAdmin)

	roses := primitive.NewObjectID()
	f.products.byID[roses] = models.Product{ID: roses, Title: "Red Roses", Price: 10}

	_, env := f.do(t, http.MethodPost, "/api/orders", user, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": roses.Hex(), "quantity": 1}},
	})
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))

	rec, _ := f.do(t, http.MethodPatch, "/api/admin/orders/"+order.ID.Hex()+"/status", user,
		map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = f.do(t, http.MethodPatch, "/api/admin/orders/"+order.ID.Hex()+"/status", admin,
		map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Order
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	rec, _ = f.do(t, http.MethodPatch, "/api/admin/orders/"+order.ID.Hex()+"/status", admin,
		map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphQLCatalogQuery(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.products.byID[id] = models.Product{ID: id, Title: "Red Roses", Price: 12.5}

	rec, _ := f.do(t, http.MethodPost, "/api/graphql", "", map[string]string{
		"query": "{ products { id title price } }",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data struct {
			Products []struct {
				Title string  `json:"title"`
				Price float64 `json:"price"`
			} `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data.Products, 1)
	assert.Equal(t, "Red Roses", result.Data.Products[0].Title)
}
