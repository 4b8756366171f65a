package websocket

import (
	"net/http"
	"time"

	"AvisoBot/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler WebSocket HTTP处理器
type Handler struct {
	hub *Hub
}

// NewHandler 创建新的WebSocket处理器
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
	}
}

// RegisterRoutes 注册统计与健康检查路由
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws/stats", h.GetStats)
	r.GET("/ws/health", h.HealthCheck)
}

// Serve 升级为WebSocket连接，用户身份由调用方解析
func (h *Handler) Serve(c *gin.Context, userID string, groups ...string) {
	if userID == "" {
		response.Fail(c, "user_id is required", nil)
		return
	}
	// 升级失败时 gorilla 已写回 HTTP 错误
	_, _ = ServeWS(h.hub, c.Writer, c.Request, userID, groups...)
}

// GetStats 获取WebSocket统计信息
func (h *Handler) GetStats(c *gin.Context) {
	response.Success(c, "ok", gin.H{
		"total_connections":   h.hub.GetConnectionCount(),
		"max_connections":     h.hub.config.MaxConnections,
		"heartbeat_interval":  h.hub.config.HeartbeatInterval.String(),
		"connection_timeout":  h.hub.config.ConnectionTimeout.String(),
		"message_buffer_size": h.hub.config.MessageBufferSize,
		"enable_compression":  h.hub.config.EnableCompression,
		"drop_on_full":        h.hub.config.DropOnFull,
	})
}

// GroupStats 获取特定组的在线连接数
func (h *Handler) GroupStats(group string) gin.H {
	return gin.H{
		"group":            group,
		"connection_count": h.hub.GetGroupConnections(group),
	}
}

// HealthCheck WebSocket健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.hub.ctx.Err() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  ErrMsgHubClosed,
		})
		return
	}

	totalConnections := h.hub.GetConnectionCount()
	maxConnections := h.hub.config.MaxConnections

	status := "healthy"
	if totalConnections >= maxConnections*9/10 { // 90%以上认为警告
		status = "warning"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            status,
		"total_connections": totalConnections,
		"max_connections":   maxConnections,
		"connection_usage":  float64(totalConnections) / float64(maxConnections) * 100,
		"timestamp":         time.Now().Unix(),
	})
}
