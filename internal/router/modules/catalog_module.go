package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/idol-catalog/internal/container"
	handlers "github.com/oksasatya/idol-catalog/internal/interface/http"
	"github.com/oksasatya/idol-catalog/internal/interface/middleware"
)

// CatalogModule wires the idol and member endpoints.
// Public: GET /api/members?recent, GET /api/members/:id, GET /api/idols/search
// Mutations share a 120 req/min per IP limit.
type CatalogModule struct {
	Handler *handlers.IdolHandler
}

func NewCatalogModule(h *handlers.IdolHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	mutations := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP("catalog"), middleware.AllowSafeMethods(), container.GetLogger())

	members := rg.Group("/members")
	members.Use(mutations)
	{
		members.GET("", m.Handler.Recent)
		members.GET("/:id", m.Handler.Get)
		members.POST("", m.Handler.CreateMember)
		members.PATCH("/:id", m.Handler.Patch)
		members.DELETE("/:id", m.Handler.Delete)
		members.PUT("/:id/image", m.Handler.UploadImage)
	}

	idols := rg.Group("/idols")
	idols.Use(mutations)
	{
		idols.POST("", m.Handler.CreateIdol)
		idols.GET("/search", m.Handler.Search)
	}
}
