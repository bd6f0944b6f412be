package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkansal-godaddy/GoStudents/internal/service"
	"github.com/nkansal-godaddy/GoStudents/pkg/httputil"
)

const (
	schoolsCacheKey = "gostudents:schools"
	offersCacheKey  = "gostudents:offers"
)

// Cache is the subset of the redis client used for response caching.
// A nil Cache disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CatalogHandler serves the static school and offer catalogs, optionally
// cached in redis.
type CatalogHandler struct {
	service  *service.SignupService
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler. cache may be nil.
func NewCatalogHandler(svc *service.SignupService, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  svc,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Schools handles GET /api/v1/schools.
func (h *CatalogHandler) Schools(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, schoolsCacheKey, func() any {
		return httputil.Response{Data: h.service.Schools()}
	})
}

// Offers handles GET /api/v1/offers.
func (h *CatalogHandler) Offers(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, offersCacheKey, func() any {
		return httputil.Response{Data: h.service.Offers()}
	})
}

// serveCached writes the cached body for key if present, otherwise builds the
// response, stores it, and writes it. Cache failures degrade to uncached
// serving.
func (h *CatalogHandler) serveCached(w http.ResponseWriter, r *http.Request, key string, build func() any) {
	ctx := r.Context()

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, key).Bytes()
		if err == nil {
			httputil.WriteRaw(w, http.StatusOK, cached)
			return
		}
		if err != redis.Nil {
			h.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	body, err := json.Marshal(build())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, body, h.cacheTTL).Err(); err != nil {
			h.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	httputil.WriteRaw(w, http.StatusOK, body)
}
