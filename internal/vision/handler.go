package vision

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露 /vision 下的接口
type Handler struct {
	svc         *Service
	maxUploadMB int64
}

func NewHandler(svc *Service, maxUploadMB int64) *Handler {
	return &Handler{svc: svc, maxUploadMB: maxUploadMB}
}

// BaseURL 返回请求的 scheme://host
func BaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID: " + c.Param(name)})
		return 0, false
	}
	return uint(id), true
}

// CreateScan 处理 POST /vision/scan (multipart: image, notes, country)
func (h *Handler) CreateScan(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}
	if h.maxUploadMB > 0 && fh.Size > h.maxUploadMB<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ukuran gambar terlalu besar."})
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	defer f.Close()

	scan, err := h.svc.CreateScan(c.Request.Context(), user.MustPrincipal(c), f, c.PostForm("notes"), c.PostForm("country"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ToResponse(scan, BaseURL(c)))
}

// GetScan 处理 GET /vision/scan/:id
func (h *Handler) GetScan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	scan, err := h.svc.Get(c.Request.Context(), user.MustPrincipal(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ToResponse(scan, BaseURL(c)))
}

// UpdateScan 处理 PATCH /vision/scan/:id
func (h *Handler) UpdateScan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body UpdateInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	scan, err := h.svc.Update(c.Request.Context(), user.MustPrincipal(c), id, body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.ToResponse(scan, BaseURL(c)))
}

// DeleteScan 处理 DELETE /vision/scan/:id
func (h *Handler) DeleteScan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user.MustPrincipal(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scan telah dihapus.", "status": http.StatusNoContent})
}

// RegisterRoutes 挂载 /vision 路由，auth 为认证中间件
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/vision", auth)
	g.POST("/scan", h.CreateScan)
	g.GET("/scan/:id", h.GetScan)
	g.PATCH("/scan/:id", h.UpdateScan)
	g.DELETE("/scan/:id", h.DeleteScan)
}
