package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/crewplan/modules/planning/presentation/controllers/dtos"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/composables"
)

type AdminControllerConfig struct {
	BasePath    string
	App         application.Application
	Middlewares []mux.MiddlewareFunc
}

// AdminController exposes cache maintenance and warmup. Access control is left to
// the ops guard middleware.
type AdminController struct {
	basePath    string
	middlewares []mux.MiddlewareFunc
	cache       *services.CacheService
	warmup      *services.WarmupService
}

func NewAdminController(cfg AdminControllerConfig) application.Controller {
	return &AdminController{
		basePath:    cfg.BasePath,
		middlewares: cfg.Middlewares,
		cache:       cfg.App.Service(services.CacheService{}).(*services.CacheService),
		warmup:      cfg.App.Service(services.WarmupService{}).(*services.WarmupService),
	}
}

func (c *AdminController) Key() string {
	return "AdminController"
}

func (c *AdminController) Register(r *mux.Router) {
	router := newRouteGroup(r, c.basePath, c.middlewares)
	router.handle("/cache", c.stats, http.MethodGet)
	router.handle("/cache", c.clear, http.MethodDelete)
	router.handle("/cache/prune", c.prune, http.MethodPost)
	router.handle("/warmup", c.warm, http.MethodPost)
}

type deletedResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

func (c *AdminController) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.cache.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (c *AdminController) clear(w http.ResponseWriter, r *http.Request) {
	n, err := c.cache.Clear(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, deletedResponse{Success: true, Deleted: n})
}

func (c *AdminController) prune(w http.ResponseWriter, r *http.Request) {
	n, err := c.cache.Prune(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, deletedResponse{Success: true, Deleted: n})
}

func (c *AdminController) warm(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.WarmupQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	report, err := c.warmup.Warm(r.Context(), q.Tag, q.Days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}
