package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shopcart/internal/domain"
	"shopcart/internal/ratelimit"
)

// CartMutator is the slice of the cart mutation service the handlers call.
type CartMutator interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context, userID string) (int64, error)
}

// CacheReader serves cached cart aggregates and per-line lookups.
type CacheReader interface {
	Summary(ctx context.Context, userID string) (domain.CartSummary, error)
	FindLine(ctx context.Context, userID, productID string) (*domain.CartLine, error)
}

// LineReader reads cart lines for rendering and ownership checks.
type LineReader interface {
	GetByID(ctx context.Context, id string) (*domain.CartLine, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
}

// ProductLister lists the catalog.
type ProductLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Limiter gates mutation routes per user and operation class.
type Limiter interface {
	Allow(ctx context.Context, userID string, class ratelimit.Class) error
	OnSuccess(ctx context.Context, userID string, class ratelimit.Class)
}

// Deps carries the collaborators the routes need.
type Deps struct {
	CartSvc  CartMutator
	Cache    CacheReader
	Lines    LineReader
	Products ProductLister
	Limiter  Limiter
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Retry-After"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &cartHandlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)

	userCart := router.Group("/users/:userID/cart")
	userCart.GET("", h.getCart)
	userCart.GET("/summary", h.getSummary)
	userCart.GET("/items", h.findItem)
	userCart.POST("/items", rateLimited(deps.Limiter, ratelimit.ClassAdd), h.addItem)
	userCart.PATCH("/items/:lineID", rateLimited(deps.Limiter, ratelimit.ClassUpdate), h.updateItem)
	userCart.DELETE("/items/:lineID", rateLimited(deps.Limiter, ratelimit.ClassRemove), h.removeItem)
	userCart.DELETE("", rateLimited(deps.Limiter, ratelimit.ClassGeneral), h.clearCart)

	return router, nil
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
