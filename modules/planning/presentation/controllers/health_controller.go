package controllers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/crewplan/pkg/application"
)

type HealthControllerConfig struct {
	BasePath    string
	Version     string
	HasAPIToken bool
}

type HealthController struct {
	basePath    string
	version     string
	hasAPIToken bool
}

func NewHealthController(cfg HealthControllerConfig) application.Controller {
	return &HealthController{
		basePath:    cfg.BasePath,
		version:     cfg.Version,
		hasAPIToken: cfg.HasAPIToken,
	}
}

func (c *HealthController) Key() string {
	return "HealthController"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	HasAPIToken bool   `json:"hasApiToken"`
	Version     string `json:"version"`
	GoVersion   string `json:"goVersion"`
}

func (c *HealthController) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		HasAPIToken: c.hasAPIToken,
		Version:     c.version,
		GoVersion:   runtime.Version(),
	})
}
