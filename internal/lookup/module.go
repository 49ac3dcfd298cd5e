package lookup

import (
	"github.com/redis/go-redis/v9"

	apphttp "addressfill_backend/internal/http"
	"addressfill_backend/internal/lookup/client"
	"addressfill_backend/internal/lookup/handler"
	"addressfill_backend/platform/config"
	"addressfill_backend/platform/logger"
	"addressfill_backend/platform/validator"
)

// Config combines the settings the lookup module needs.
type Config interface {
	config.LookupConfig
	config.CacheConfig
}

// Module wires the Locatieserver client behind the cache layer and exposes
// a direct lookup endpoint.
type Module struct {
	svc Service
	rdb *redis.Client
	val *validator.Validator
}

// NewModule builds the lookup service. Redis is optional; without it the
// service still collapses concurrent identical fetches.
func NewModule(cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	cli := client.New(
		cfg.GetLookupBaseURL(),
		cfg.GetLookupTimeout(),
		cfg.GetLookupRateLimit(),
		cfg.GetLookupRateBurst(),
		log,
	)

	var rdb *redis.Client
	if cfg.IsCacheEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		})
	}

	return &Module{
		svc: NewCache(cli, rdb, cfg.GetLookupCacheTTL(), log),
		rdb: rdb,
		val: val,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "lookup"
}

// RegisterRoutes registers the module's routes under /api/v1/address
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	address := ctx.V1.Group("/address")
	handler.New(m.svc, m.val).RegisterRoutes(address)
}

// Service returns the composed lookup service.
func (m *Module) Service() Service {
	return m.svc
}

// Close releases the Redis connection if one was opened.
func (m *Module) Close() error {
	if m.rdb != nil {
		return m.rdb.Close()
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
