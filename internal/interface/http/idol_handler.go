package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	repo "github.com/oksasatya/idol-catalog/internal/domain/repository"
	"github.com/oksasatya/idol-catalog/pkg/response"
	"github.com/oksasatya/idol-catalog/pkg/validation"
)

const maxImageSize = 5 << 20

type IdolHandler struct {
	Svc    *application.IdolService
	Logger *logrus.Logger
}

func NewIdolHandler(svc *application.IdolService, logger *logrus.Logger) *IdolHandler {
	return &IdolHandler{Svc: svc, Logger: logger}
}

type memberRequest struct {
	Name     string `json:"name" binding:"required,person"`
	Age      int    `json:"age" binding:"gte=0,lte=150"`
	UserName string `json:"userName" binding:"omitempty,max=100"`
	Password string `json:"password" binding:"required,pwd"`
}

func (r memberRequest) input() application.CreateMemberInput {
	return application.CreateMemberInput{Name: r.Name, Age: r.Age, UserName: r.UserName, Password: r.Password}
}

type idolRequest struct {
	Name    string          `json:"name" binding:"required,person"`
	Members []memberRequest `json:"members" binding:"omitempty,max=50,dive"`
}

type patchRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	CntMember int     `json:"cntMember" binding:"gte=0"`
}

// Recent handles GET /api/members?recent[&page=n].
func (h *IdolHandler) Recent(c *gin.Context) {
	page := 0
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > repo.MaxPage {
			response.Abort(c, http.StatusBadRequest, "invalid page", map[string]string{"page": fmt.Sprintf("must be between 0 and %d", repo.MaxPage)})
			return
		}
		page = n
	}
	idols, err := h.Svc.Recent(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, idols)
}

func (h *IdolHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	idol, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, idol)
}

// CreateMember handles POST /api/members; ?idol=<id> attaches the member.
func (h *IdolHandler) CreateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	var idolID *int64
	if v := c.Query("idol"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			response.Abort(c, http.StatusBadRequest, "invalid idol", map[string]string{"idol": "must be a positive integer"})
			return
		}
		idolID = &n
	}
	m, err := h.Svc.CreateMember(c.Request.Context(), req.input(), idolID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *IdolHandler) CreateIdol(c *gin.Context) {
	var req idolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	members := make([]application.CreateMemberInput, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, m.input())
	}
	idol, err := h.Svc.CreateIdol(c.Request.Context(), req.Name, members)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, idol)
}

// Patch merges name and a non-zero cntMember into the idol.
func (h *IdolHandler) Patch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	idol, err := h.Svc.Patch(c.Request.Context(), id, entity.IdolPatch{Name: req.Name, CntMember: req.CntMember})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, idol)
}

func (h *IdolHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage handles PUT /api/members/:id/image with a multipart "file".
func (h *IdolHandler) UploadImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Abort(c, http.StatusBadRequest, "file is required", map[string]string{"file": "required"})
		return
	}
	if fh.Size > maxImageSize {
		response.Abort(c, http.StatusBadRequest, "file too large", map[string]string{"file": "max 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	idol, err := h.Svc.UploadImage(c.Request.Context(), id, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, idol)
}

func (h *IdolHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Abort(c, http.StatusBadRequest, "missing query", map[string]string{"q": "required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchIdols(c.Request.Context(), q, size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, hits)
}
