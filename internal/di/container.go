package di

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/quince-goods/storefront/internal/clients/reviewapi"
	"github.com/quince-goods/storefront/internal/platform/config"
	"github.com/quince-goods/storefront/internal/platform/richtext"
	"github.com/quince-goods/storefront/internal/repositories"
	"github.com/quince-goods/storefront/internal/repositories/localstore"
	"github.com/quince-goods/storefront/internal/services"
)

// Services bundles the service-layer pieces that handlers rely upon. Concrete
// implementations are assembled via dependency injection in NewContainer.
type Services struct {
	Cart      services.CartService
	Badge     *services.Badge
	Prices    *services.PriceDisplay
	Editor    services.Editor
	Submitter services.ReviewSubmitter
}

// Container wires storage, clients, and services for runtime use.
type Container struct {
	Config   config.Config
	Store    repositories.CartStore
	Catalog  repositories.ProductCatalog
	Services Services

	closers []func() error
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{Config: cfg}

	store, err := buildStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("build cart store: %w", err)
	}
	c.Store = store
	if closer, ok := store.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}

	catalog, err := localstore.NewCatalogFromFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("build product catalog: %w", err)
	}
	c.Catalog = catalog

	badge := services.NewBadge()
	c.Services.Badge = badge

	serviceLogger := func(ctx context.Context, msg string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(msg, zapFields...)
	}

	cart, err := services.NewCartService(services.CartServiceDeps{
		Store:  store,
		Events: badge,
		Logger: serviceLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("build cart service: %w", err)
	}
	c.Services.Cart = cart

	prices, err := services.NewPriceDisplay(services.PricingEngineDeps{
		Source: services.StaticRates(cfg.Currency.Rates),
		Logger: serviceLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("build price display: %w", err)
	}
	c.Services.Prices = prices

	c.Services.Editor = richtext.NewHTMLCodec()

	submitter, err := reviewapi.NewClient(cfg.ReviewAPI.BaseURL,
		reviewapi.WithHTTPClient(&http.Client{Timeout: cfg.ReviewAPI.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("build review client: %w", err)
	}
	c.Services.Submitter = submitter

	return c, nil
}

// Close releases resources such as store handles.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var first error
	for _, closer := range c.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func buildStore(cfg config.StoreConfig) (repositories.CartStore, error) {
	switch cfg.Backend {
	case "memory":
		return localstore.NewMemoryStore(), nil
	case "sqlite":
		return localstore.NewSQLiteStore(cfg.Path, cfg.Slot)
	case "file":
		return localstore.NewFileStore(filepath.Clean(cfg.Path), cfg.Slot)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
