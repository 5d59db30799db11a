package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/idol-catalog/internal/interface/http"
)

type PageModule struct {
	Handler *handlers.PageHandler
}

func NewPageModule(h *handlers.PageHandler) *PageModule {
	return &PageModule{Handler: h}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Home)
	rg.GET("/design", m.Handler.Design)
	rg.GET("/orders", m.Handler.Orders)
}
