package dashboard

import (
	"net/http"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

// Handler 暴露 /dashboard 下的接口
type Handler struct {
	agg *Aggregator
	now func() time.Time
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg, now: time.Now}
}

// Metrics 处理 GET /dashboard/metrics
func (h *Handler) Metrics(c *gin.Context) {
	metrics, err := h.agg.ComputeMetrics(c.Request.Context(), h.now())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// RegisterRoutes 挂载 /dashboard 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/dashboard", auth)
	g.GET("/metrics", h.Metrics)
}
