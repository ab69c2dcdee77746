package diagnosis

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露 /diagnosis 下的接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID: " + c.Param("id")})
		return 0, false
	}
	return uint(id), true
}

// SubmitChecklist 处理 POST /diagnosis/checklist
func (h *Handler) SubmitChecklist(c *gin.Context) {
	var body ChecklistPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	id, err := h.svc.SubmitChecklist(c.Request.Context(), user.MustPrincipal(c), body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnosisId": id})
}

// List 处理 GET /diagnosis/
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), user.MustPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get 处理 GET /diagnosis/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), user.MustPrincipal(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Delete 处理 DELETE /diagnosis/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user.MustPrincipal(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Diagnosis berhasil dihapus.", "status": http.StatusNoContent})
}

// RegisterRoutes 挂载 /diagnosis 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/diagnosis", auth)
	g.POST("/checklist", h.SubmitChecklist)
	g.GET("/", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}
