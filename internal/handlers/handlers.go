package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trustgate/internal/middleware"
	"trustgate/internal/models"
	"trustgate/internal/service"
)

type ProductAPI interface {
	Create(ctx context.Context, in service.CreateProductInput) (models.Product, error)
	Get(ctx context.Context, id string) (service.ProductView, error)
}

type SellerAPI interface {
	Submit(ctx context.Context, userID string, req service.SellerRequest) (models.SellerProfile, error)
}

type DeadLetters interface {
	ListQuarantined(ctx context.Context, limit, offset int) ([]models.ProductImage, error)
	Requeue(ctx context.Context, id string) error
}

// Check is a named dependency probe for the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Options struct {
	Environment string
	JWTSecret   string
	Limiter     *middleware.PerUserLimiter
}

type HandlerSet struct {
	log         zerolog.Logger
	opts        Options
	products    ProductAPI
	sellers     SellerAPI
	deadLetters DeadLetters
	checks      []Check
}

func NewHandlerSet(log zerolog.Logger, opts Options, products ProductAPI, sellers SellerAPI, deadLetters DeadLetters, checks ...Check) HandlerSet {
	return HandlerSet{
		log:         log,
		opts:        opts,
		products:    products,
		sellers:     sellers,
		deadLetters: deadLetters,
		checks:      checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.opts.JWTSecret))

	products := v1.Group("/products")
	products.POST("", middleware.RequireRoles(models.UserRoleSeller, models.UserRoleAdmin), h.CreateProduct)
	products.GET("/:id", h.GetProduct)

	sellers := v1.Group("/sellers")
	if h.opts.Limiter != nil {
		sellers.Use(middleware.RateLimit(h.opts.Limiter))
	}
	sellers.POST("/requests", h.SubmitSellerRequest)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
	admin.GET("/images/quarantined", h.ListQuarantinedImages)
	admin.POST("/images/:id/requeue", h.RequeueImage)
}
