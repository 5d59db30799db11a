package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/idol-catalog/internal/interface/middleware"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

func (h *PageHandler) Home(c *gin.Context)   { h.render(c, "home", "Home") }
func (h *PageHandler) Design(c *gin.Context) { h.render(c, "design", "Design") }
func (h *PageHandler) Orders(c *gin.Context) { h.render(c, "orders", "Orders") }

func (h *PageHandler) render(c *gin.Context, name, title string) {
	data := pageData{Title: title}
	if p, ok := middleware.CurrentPrincipal(c); ok {
		data.User = p.Username
	}
	htmlOK(c, name, data)
}
