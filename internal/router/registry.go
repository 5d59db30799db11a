package router

import "github.com/gin-gonic/gin"

// Registry collects modules and mounts them on the engine. API modules live
// under /api; web modules (login form, pages) under the site root.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Web         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	webModules  []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api, Web: &engine.RouterGroup}
}

// Use adds middleware to the /api group only.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) AddWeb(mod Module) {
	r.webModules = append(r.webModules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.webModules {
		m.Register(r.Web)
	}
}
