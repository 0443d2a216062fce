package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// Deps are the collaborators the HTTP application is built from.
type Deps struct {
	Store      *Store
	Cache      cache.ProductCache
	Events     services.EventPublisher
	JWTSecret  string
	Log        *zap.Logger
	RequestLog bool
}

// Services holds the business services built by New.
type Services struct {
	Options    *services.OptionService
	Products   *services.ProductService
	Storefront *services.StorefrontService
	Carts      *services.CartService
	Auth       *services.AuthService
}

// NewServices wires the services over d.
func NewServices(d Deps) *Services {
	options := services.NewOptionService(d.Store.Options, d.Log)
	products := services.NewProductService(d.Store.Products, options, d.Cache, d.Events, d.Log)
	return &Services{
		Options:    options,
		Products:   products,
		Storefront: services.NewStorefrontService(products, d.Log),
		Carts:      services.NewCartService(d.Store.Carts, products, d.Log),
		Auth:       services.NewAuthService(d.Store.Admins, d.JWTSecret, d.Log),
	}
}

// New builds the fiber application with every route registered.
func New(d Deps) (*fiber.App, *Services) {
	svc := NewServices(d)

	app := fiber.New(fiber.Config{AppName: "storefront"})
	if d.RequestLog {
		app.Use(fiberlogger.New())
	}
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1")

	admin := apiV1.Group("/admin")
	handlers.NewAuthHandler(svc.Auth, middleware.RegistrationGuard(svc.Auth, d.Log), d.Log).RegisterRoutes(admin)
	protected := admin.Group("", middleware.AdminRequired(svc.Auth, d.Log))
	handlers.NewOptionHandler(svc.Options, d.Log).RegisterRoutes(protected)
	handlers.NewProductHandler(svc.Products, d.Log).RegisterRoutes(protected)

	handlers.NewStorefrontHandler(svc.Storefront, d.Log).RegisterRoutes(apiV1)
	handlers.NewCartHandler(svc.Carts, d.Log).RegisterRoutes(apiV1)

	return app, svc
}
