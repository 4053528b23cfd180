package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/crewplan/modules/planning/presentation/controllers/dtos"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/composables"
)

type DirectoryControllerConfig struct {
	BasePath    string
	App         application.Application
	Middlewares []mux.MiddlewareFunc
}

// DirectoryController lists crew, vehicles, projects and subprojects for the planner's selectors.
type DirectoryController struct {
	basePath    string
	middlewares []mux.MiddlewareFunc
	directory   *services.DirectoryService
}

func NewDirectoryController(cfg DirectoryControllerConfig) application.Controller {
	return &DirectoryController{
		basePath:    cfg.BasePath,
		middlewares: cfg.Middlewares,
		directory:   cfg.App.Service(services.DirectoryService{}).(*services.DirectoryService),
	}
}

func (c *DirectoryController) Key() string {
	return "DirectoryController"
}

func (c *DirectoryController) Register(r *mux.Router) {
	router := newRouteGroup(r, c.basePath, c.middlewares)
	router.handle("/crew", c.crew, http.MethodGet)
	router.handle("/vehicles", c.vehicles, http.MethodGet)
	router.handle("/projects", c.projects, http.MethodGet)
	router.handle("/subprojects", c.subprojects, http.MethodGet)
}

func (c *DirectoryController) crew(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.CrewQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	list, err := c.directory.Crew(r.Context(), services.CrewFilter{
		Tag:        q.Tag,
		ActiveOnly: q.ActiveOnly(),
		Query:      q.Q,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (c *DirectoryController) vehicles(w http.ResponseWriter, r *http.Request) {
	list, err := c.directory.Vehicles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (c *DirectoryController) projects(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.ProjectsQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	start, end := q.Period()
	list, err := c.directory.Projects(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (c *DirectoryController) subprojects(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.ProjectsQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	start, end := q.Period()
	list, err := c.directory.Subprojects(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}
