package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title     string
	User      string
	Error     bool
	LoggedOut bool
	Return    string
}

func htmlOK(c *gin.Context, name string, data pageData) {
	c.Render(http.StatusOK, render.HTML{Template: pages, Name: name, Data: data})
}
