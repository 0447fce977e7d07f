// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"quickshow/internal/bookings"
	"quickshow/internal/notifications"
	"quickshow/internal/payments"
	"quickshow/internal/shared/config"
	"quickshow/internal/shared/database"
	"quickshow/internal/shows"
	"quickshow/internal/users"
	"quickshow/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier bookings.Notifier

	showService shows.Service
	reconciler  *bookings.Reconciler
}

// NewRouter creates a new router instance. notifier may be nil when Kafka
// is disabled.
func NewRouter(cfg *config.Config, db *database.DB, notifier bookings.Notifier) *Router {
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupShowRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// Reconciler exposes the reconciliation engine for background jobs that
// share the router's wiring.
func (r *Router) Reconciler() *bookings.Reconciler {
	return r.reconciler
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "quickshow-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "quickshow-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())

	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.GetRedisClient())
	}

	r.showService = shows.NewService(showRepo, cacheService, r.config.Redis.SeatCacheTTL)
	showController := shows.NewController(r.showService)

	shows.SetupShowRoutes(rg, showController, r.config)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	userRepo := users.NewRepository(r.db.GetPostgreSQL())

	gateway := payments.NewClient(r.config.Payment)
	poller := payments.NewPoller(gateway, r.config.Payment)

	bookingService := bookings.NewService(bookingRepo, r.showService, userRepo, gateway, r.notifier, r.config)
	r.reconciler = bookings.NewReconciler(bookingRepo, r.showService, gateway, poller, r.notifier)

	bookingController := bookings.NewController(bookingService, r.reconciler, r.showService)
	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}
