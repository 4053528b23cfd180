package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// routeGroup registers handlers on the root router under a shared base path. Several
// controllers mount under /api; sibling PathPrefix subrouters would turn a method
// mismatch on one of them into a 404.
type routeGroup struct {
	router      *mux.Router
	basePath    string
	middlewares []mux.MiddlewareFunc
}

func newRouteGroup(r *mux.Router, basePath string, middlewares []mux.MiddlewareFunc) routeGroup {
	return routeGroup{router: r, basePath: basePath, middlewares: middlewares}
}

func (g routeGroup) handle(path string, h http.HandlerFunc, methods ...string) {
	var handler http.Handler = h
	for i := len(g.middlewares) - 1; i >= 0; i-- {
		handler = g.middlewares[i](handler)
	}
	g.router.Handle(g.basePath+path, handler).Methods(methods...)
}
