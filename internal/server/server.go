// Package server exposes the family graph over a REST API. Handlers are
// thin: they decode, call the domain services, and encode; all rules live
// in pkg/family and pkg/photos.
package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/photos"
)

// Cache keys for derived data. All three are dropped on any structural or
// field write.
const (
	cacheKeyTree   = "kintree:tree"
	cacheKeyLayout = "kintree:layout"
	cacheKeySVG    = "kintree:svg"
)

// Server wires the domain services behind the HTTP surface. Every
// dependency is injected; the server owns none of them.
type Server struct {
	family   *family.Service
	photos   *photos.Service
	engine   *layout.Engine
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
}

// New creates a server. A nil cache disables caching; logger nil means
// log.Default().
func New(fam *family.Service, ph *photos.Service, engine *layout.Engine, c cache.Cache, cacheTTL time.Duration, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		family:   fam,
		photos:   ph,
		engine:   engine,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleGetTree)
		r.Get("/tree/layout", s.handleGetLayout)
		r.Get("/tree/svg", s.handleGetSVG)

		r.Post("/persons", s.handleCreatePerson)
		r.Patch("/persons/{id}", s.handleUpdatePerson)
		r.Delete("/persons/{id}", s.handleDeletePerson)
		r.Get("/persons/{id}/completeness", s.handleCompleteness)
		r.Get("/persons/{id}/couples", s.handleListCouples)

		r.Post("/couples", s.handleCreateCouple)
		r.Delete("/couples/{id}", s.handleDeleteCouple)
		r.Post("/couples/{id}/members", s.handleLinkMember)
		r.Post("/edges/flip", s.handleFlipEdge)

		r.Get("/photos", s.handleListPhotos)
		r.Post("/photos", s.handleUploadPhotos)
		r.Delete("/photos/{id}", s.handleDeletePhoto)
	})
	return r
}

// invalidate drops all derived-data cache entries after a write.
func (s *Server) invalidate(ctx context.Context) {
	for _, key := range []string{cacheKeyTree, cacheKeyLayout, cacheKeySVG} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("cache invalidation failed", "key", key, "err", err)
		}
	}
}
