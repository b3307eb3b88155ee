// Package server boots the API: config, datastore, cache, storage, queue
// workers, schedulers, event listeners and the HTTP listener, then blocks
// until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bloomkart/bloomkart/app/jobs"
	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/routes"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/pkg/cache"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/event"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/queue"
	"github.com/bloomkart/bloomkart/pkg/router"
	"github.com/bloomkart/bloomkart/pkg/schedule"
	"github.com/bloomkart/bloomkart/pkg/storage"
	"github.com/bloomkart/bloomkart/pkg/ws"
)

const (
	staleCartAge   = 30 * 24 * time.Hour
	janitorTick    = 24 * time.Hour
	workerCount    = 4
	shutdownWindow = 15 * time.Second
)

// Run boots everything and blocks until SIGINT/SIGTERM.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Disconnect(shutdownCtx); err != nil {
			logger.Error("server: mongo disconnect", "error", err)
		}
	}()

	if err := repositories.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Cache and storage are best-effort; the API serves without them.
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	}
	if err := storage.Connect(); err != nil {
		logger.Warn("server: storage disk unavailable, archives disabled", "error", err)
	}

	// Queue: Redis-backed when the cache connection is up, in-memory otherwise.
	jobs.Register()
	if cache.Enabled() {
		queue.SetDriver(queue.NewRedisDriver(cache.Client(), ""))
	}
	queue.StartWorkers(ctx, workerCount)

	hub := ws.NewHub()
	go hub.Run()

	userRepo := repositories.NewUserRepository()
	cartService := services.NewCartService(repositories.NewCartRepository())

	deps := routes.Deps{
		Auth:       services.NewAuthService(userRepo),
		Users:      services.NewUserService(userRepo),
		Products:   services.NewProductService(repositories.NewProductRepository()),
		Categories: services.NewCategoryService(repositories.NewCategoryRepository()),
		Carts:      cartService,
		Orders:     services.NewOrderService(repositories.NewOrderRepository(), repositories.NewProductRepository()),
		Hub:        hub,
	}

	registerListeners(userRepo, hub)

	sched := schedule.New()
	sched.Every(janitorTick, "stale-cart-janitor", func(ctx context.Context) error {
		_, err := cartService.PurgeStale(ctx, staleCartAge)
		return err
	})
	sched.Start(ctx)

	r := router.New()
	if err := routes.Register(r, deps); err != nil {
		return fmt.Errorf("server: register routes: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// registerListeners wires the order-created event to the confirmation email
// job and the back-office websocket feed.
func registerListeners(users repositories.UserRepo, hub *ws.Hub) {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		o, ok := payload.(*models.Order)
		if !ok {
			return
		}

		hub.Publish(services.EventOrderCreated, o)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		u, err := users.FindByID(ctx, o.UserID)
		if err != nil {
			logger.Warn("server: confirmation skipped, user lookup failed",
				"order_id", o.ID.Hex(), "error", err)
			return
		}

		job := &jobs.OrderConfirmationJob{
			OrderID: o.ID.Hex(),
			Email:   u.Email,
			Name:    u.FullName,
			Total:   o.Total,
		}
		if err := queue.Dispatch(job); err != nil {
			logger.Error("server: dispatch confirmation job", "order_id", o.ID.Hex(), "error", err)
		}
	})

	event.Listen(services.EventOrderUpdated, func(payload interface{}) {
		if o, ok := payload.(*models.Order); ok {
			hub.Publish(services.EventOrderUpdated, o)
		}
	})
}
