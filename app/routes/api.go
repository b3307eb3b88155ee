// Package routes declares the full HTTP surface of the API.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/bloomkart/bloomkart/app/controllers"
	"github.com/bloomkart/bloomkart/app/graphql"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/cache"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/metrics"
	"github.com/bloomkart/bloomkart/pkg/middleware"
	"github.com/bloomkart/bloomkart/pkg/reqid"
	"github.com/bloomkart/bloomkart/pkg/response"
	"github.com/bloomkart/bloomkart/pkg/router"
	"github.com/bloomkart/bloomkart/pkg/ws"
)

// Deps carries the constructed services into route registration.
type Deps struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Products   *services.ProductService
	Categories *services.CategoryService
	Carts      *services.CartService
	Orders     *services.OrderService
	Hub        *ws.Hub
}

// Register mounts every route, with global middleware applied in order:
// request id, logging, panic recovery, metrics, CORS.
func Register(r *router.Router, d Deps) error {
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		metrics.Middleware(),
		middleware.CORS(middleware.NewCORSOptions(config.AllowedOrigins())),
	)

	authCtl := controllers.NewAuthController(d.Auth, d.Users)
	userCtl := controllers.NewUserController(d.Users)
	productCtl := controllers.NewProductController(d.Products)
	categoryCtl := controllers.NewCategoryController(d.Categories)
	cartCtl := controllers.NewCartController(d.Carts)
	orderCtl := controllers.NewOrderController(d.Orders)

	// Ops endpoints live outside /api and skip auth.
	r.Get("/healthz", "healthz", healthz)
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Auth. Rate limits keep credential stuffing expensive.
	api.Post("/auth/register", "auth.register", authCtl.Register, middleware.RateLimit(10, time.Minute))
	api.Post("/auth/login", "auth.login", authCtl.Login, middleware.RateLimit(20, time.Minute))
	api.Get("/auth/me", "auth.me", authCtl.Me, middleware.Authenticate)
	api.Put("/auth/me", "auth.me.update", authCtl.UpdateMe, middleware.Authenticate)

	// Catalog reads are public.
	api.Get("/products", "products.list", productCtl.List)
	api.Get("/products/{id}", "products.show", productCtl.Get)
	api.Get("/categories", "categories.list", categoryCtl.List)
	api.Get("/categories/{id}", "categories.show", categoryCtl.Get)

	// Cart sync works for anonymous and signed-in shoppers alike.
	api.Post("/cart/sync", "cart.sync", cartCtl.Sync, middleware.OptionalAuth)
	api.Get("/cart/{id}", "cart.show", cartCtl.Get, middleware.OptionalAuth)
	api.Get("/cart/user/{id}", "cart.byUser", cartCtl.GetByUser, middleware.Authenticate)

	// Orders require an account.
	api.Post("/orders", "orders.create", orderCtl.Create, middleware.Authenticate)
	api.Get("/orders", "orders.mine", orderCtl.ListMine, middleware.Authenticate)
	api.Get("/orders/{id}", "orders.show", orderCtl.Get, middleware.Authenticate)

	// Read-only catalog queries over GraphQL.
	schema, err := graphql.NewSchema(d.Products, d.Categories)
	if err != nil {
		return err
	}
	api.Post("/graphql", "graphql", graphql.Handler(schema))

	// Admin surface.
	admin := api.Group("", middleware.Authenticate, middleware.Authorize(auth.RoleAdmin))

	admin.Post("/products", "products.create", productCtl.Create)
	admin.Put("/products/{id}", "products.update", productCtl.Update)
	admin.Delete("/products/{id}", "products.delete", productCtl.Delete)

	admin.Post("/categories", "categories.create", categoryCtl.Create)
	admin.Put("/categories/{id}", "categories.update", categoryCtl.Update)
	admin.Delete("/categories/{id}", "categories.delete", categoryCtl.Delete)

	admin.Get("/users", "users.list", userCtl.List)
	admin.Post("/users", "users.create", userCtl.Create)
	admin.Get("/users/{id}", "users.show", userCtl.Get)
	admin.Put("/users/{id}", "users.update", userCtl.Update)
	admin.Delete("/users/{id}", "users.delete", userCtl.Delete)

	admin.Get("/admin/orders", "admin.orders.list", orderCtl.List)
	admin.Patch("/admin/orders/{id}/status", "admin.orders.status", orderCtl.UpdateStatus)

	// Live order feed for back-office dashboards.
	admin.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
		d.Hub.Upgrade(w, r)
	})

	return nil
}

// healthz reports process liveness plus datastore reachability.
func healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"app": "ok", "mongo": "ok", "redis": "disabled"}
	if cache.Enabled() {
		status["redis"] = "ok"
	}

	if err := database.Ping(ctx); err != nil {
		status["mongo"] = "down"
		response.Error(w, http.StatusServiceUnavailable, "datastore unreachable")
		return
	}

	response.Success(w, status)
}
