package server

import (
	"context"
	"fmt"

	_ "productsapi/docs" // swagger spec
	"productsapi/internal/config"
	"productsapi/internal/database"
	"productsapi/internal/handlers"
	"productsapi/internal/middleware"
	"productsapi/internal/repositories"
	"productsapi/internal/services"
	"productsapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

// Dependencies is everything the HTTP application needs. It is built once by
// Bootstrap (or by hand in tests) and passed to New.
type Dependencies struct {
	Config    config.Config
	Logger    *zap.Logger
	Products  repositories.ProductRepository
	Publisher services.EventPublisher
	// Ready reports whether the database is usable.
	Ready func() bool
}

// New builds the fiber application.
func New(deps Dependencies) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Ready == nil {
		deps.Ready = func() bool { return true }
	}

	app := fiber.New(fiber.Config{
		AppName:               "productsapi",
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${locals:requestid} ${status} ${latency} ${method} ${path}\n",
		Output: &zapio.Writer{Log: deps.Logger.Named("http"), Level: zap.InfoLevel},
	}))
	app.Use(middleware.CORS(deps.Config.FrontendURL))

	// --- Routes ---
	productService := services.NewProductService(deps.Products, deps.Publisher, deps.Logger)
	productHandler := handlers.NewProductHandler(productService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Ready)

	if deps.Config.TestMode {
		app.Get("/api", handlers.HandleAPI)
	}
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	healthHandler.RegisterRoutes(app)

	// --- Docs ---
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/docs/index.html")
	})
	app.Get("/docs/*", adaptor.HTTPHandlerFunc(httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	)))

	return app
}

// Bootstrap builds Dependencies from configuration. The database connection is
// attempted in the background; a failure is logged and only shows in Ready.
// The returned cleanup releases the database and broker connections.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (Dependencies, func(), error) {
	deps := Dependencies{Config: cfg, Logger: log}
	var closers []func() error

	switch cfg.DBDriver {
	case config.DriverMemory:
		deps.Products = repositories.NewMemoryProductRepository()
		deps.Ready = func() bool { return true }
	default:
		handle, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, log)
		if err != nil {
			return Dependencies{}, nil, err
		}
		closers = append(closers, handle.Close)
		go handle.Connect(ctx)

		deps.Products = repositories.NewGORMProductRepository(handle.DB())
		deps.Ready = handle.Ready
	}

	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitQueue}, log)
		if err != nil {
			log.Warn("product events disabled", zap.Error(err))
		} else {
			deps.Publisher = client
			closers = append(closers, client.Close)
		}
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("error during cleanup", zap.Error(err))
			}
		}
	}
	return deps, cleanup, nil
}

// Clear drops and recreates the products table.
func Clear(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.DBDriver == config.DriverMemory {
		return nil
	}
	handle, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer handle.Close()

	if err := handle.Authenticate(ctx); err != nil {
		return fmt.Errorf("%s: %w", database.ConnectionErrorMessage, err)
	}
	return handle.Reset()
}
