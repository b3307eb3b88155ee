package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// errDup mimics the driver's unique-index violation so services exercise the
// same database.IsDuplicateKey path they hit in production.
var errDup = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

func errNoDocs(what string) error {
	return fmt.Errorf("fake: %s: %w", what, mongo.ErrNoDocuments)
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, ex := range r.users {
		if ex.Email == strings.ToLower(u.Email) {
			return errDup
		}
	}
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(u.Email)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNoDocs("user")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errNoDocs("user by email")
}

func (r *fakeUserRepo) List(_ context.Context, page, perPage int) ([]models.User, response.Pagination, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, response.Pagination{Page: page, PerPage: perPage, Total: int64(len(out)), TotalPages: 1}, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errNoDocs("user")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return errNoDocs("user")
	}
	delete(r.users, id)
	return nil
}

type fakeProductRepo struct {
	products map[primitive.ObjectID]models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[primitive.ObjectID]models.Product{}}
}

func (r *fakeProductRepo) add(title string, price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	r.products[id] = models.Product{ID: id, Title: title, Price: price, Images: []string{"data:image/png;base64,xx"}}
	return id
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNoDocs("product")
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, f repositories.ProductFilter) ([]models.Product, response.Pagination, error) {
	out := []models.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, response.Pagination{Page: 1, PerPage: len(out), Total: int64(len(out)), TotalPages: 1}, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return errNoDocs("product")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.products[id]; !ok {
		return errNoDocs("product")
	}
	delete(r.products, id)
	return nil
}

type fakeOrderRepo struct {
	orders map[primitive.ObjectID]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[primitive.ObjectID]models.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errNoDocs("order")
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) List(_ context.Context, page, perPage int) ([]models.Order, response.Pagination, error) {
	out := []models.Order{}
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, response.Pagination{Page: page, PerPage: perPage, Total: int64(len(out)), TotalPages: 1}, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errNoDocs("order")
	}
	o.Status = status
	r.orders[id] = o
	return &o, nil
}

type fakeCartRepo struct {
	carts map[primitive.ObjectID]models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[primitive.ObjectID]models.Cart{}}
}

func (r *fakeCartRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, errNoDocs("cart")
	}
	return &c, nil
}

func (r *fakeCartRepo) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	for _, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID {
			return &c, nil
		}
	}
	return nil, errNoDocs("cart by user")
}

func (r *fakeCartRepo) UpsertByUserID(_ context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	for id, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID {
			c.Items = items
			c.UpdatedAt = time.Now().UTC()
			r.carts[id] = c
			return &c, nil
		}
	}
	c := models.Cart{ID: primitive.NewObjectID(), UserID: &userID, Items: items, UpdatedAt: time.Now().UTC()}
	r.carts[c.ID] = c
	return &c, nil
}

func (r *fakeCartRepo) ReplaceItems(_ context.Context, id primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, errNoDocs("cart")
	}
	c.Items = items
	c.UpdatedAt = time.Now().UTC()
	r.carts[id] = c
	return &c, nil
}

func (r *fakeCartRepo) CreateAnonymous(_ context.Context, items []models.CartItem) (*models.Cart, error) {
	c := models.Cart{ID: primitive.NewObjectID(), Items: items, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	r.carts[c.ID] = c
	return &c, nil
}

func (r *fakeCartRepo) DeleteStaleAnonymous(_ context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for id, c := range r.carts {
		if c.UserID == nil && c.UpdatedAt.Before(olderThan) {
			delete(r.carts, id)
			n++
		}
	}
	return n, nil
}

type fakeCategoryRepo struct {
	categories map[primitive.ObjectID]models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[primitive.ObjectID]models.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	for _, ex := range r.categories {
		if ex.Name == c.Name || ex.Slug == c.Slug {
			return errDup
		}
	}
	c.ID = primitive.NewObjectID()
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, errNoDocs("category")
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindAll(_ context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return errNoDocs("category")
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.categories[id]; !ok {
		return errNoDocs("category")
	}
	delete(r.categories, id)
	return nil
}
