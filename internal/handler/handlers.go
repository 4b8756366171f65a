package handlers

import (
	"context"
	"net/http"
	"strconv"

	"AvisoBot/internal/conversation"
	"AvisoBot/internal/models"
	"AvisoBot/pkg/config"
	"AvisoBot/pkg/errors"
	"AvisoBot/pkg/logger"
	"AvisoBot/pkg/metrics"
	"AvisoBot/pkg/middleware"
	"AvisoBot/pkg/response"
	"AvisoBot/pkg/sse"
	"AvisoBot/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DispatchLister 派发日志查询
type DispatchLister interface {
	Recent(ctx context.Context, limit int) ([]models.DispatchLog, error)
}

type Options struct {
	DB          *gorm.DB
	Machine     *conversation.Machine
	Hub         *websocket.Hub
	Stream      *sse.Hub
	Limiter     *middleware.RateLimiter
	Journal     DispatchLister
	Metrics     *metrics.Metrics
	Idempotency middleware.IdempotencyConfig
}

type Handlers struct {
	db      *gorm.DB
	machine *conversation.Machine
	hub     *websocket.Hub
	ws      *websocket.Handler
	stream  *sse.Hub
	limiter *middleware.RateLimiter
	journal DispatchLister
	metrics *metrics.Metrics
	idem    middleware.IdempotencyConfig
}

// NewHandlers 组装 HTTP 与 WebSocket 入口；socket 上的业务消息同样交给状态机
func NewHandlers(opts Options) *Handlers {
	h := &Handlers{
		db:      opts.DB,
		machine: opts.Machine,
		hub:     opts.Hub,
		stream:  opts.Stream,
		limiter: opts.Limiter,
		journal: opts.Journal,
		metrics: opts.Metrics,
		idem:    opts.Idempotency,
	}
	if h.hub != nil {
		h.ws = websocket.NewHandler(h.hub)
		h.hub.SetMessageHandler(h.handleSocketMessage)
	}
	return h
}

func (h *Handlers) Register(engine *gin.Engine) {
	if h.metrics != nil {
		engine.Use(metrics.Middleware(h.metrics))
		if config.GlobalConfig.MonitorPrefix != "" {
			engine.GET(config.GlobalConfig.MonitorPrefix, gin.WrapH(h.metrics.Handler()))
		}
	}

	r := engine.Group(config.GlobalConfig.APIPrefix)

	// Register System Module Routes
	h.registerSystemRoutes(r)

	// Register Business Module Routes
	h.registerReportRoutes(r)
	h.registerCoordinationRoutes(r)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("/system")
	{
		system.GET("/health", h.HealthCheck)

		system.GET("/dispatches", h.handleRecentDispatches)
	}
	if h.ws != nil {
		h.ws.RegisterRoutes(r)
	}
}

// Report Module
func (h *Handlers) registerReportRoutes(r *gin.RouterGroup) {
	report := r.Group("/report")
	{
		report.POST("/events", middleware.IdempotencyMiddleware(h.idem), h.handleReportEvent)

		report.GET("/ws", h.handleReportSocket)
	}
}

// Coordination Module
func (h *Handlers) registerCoordinationRoutes(r *gin.RouterGroup) {
	coord := r.Group("/coordination")
	{
		coord.GET("/ws", h.handleCoordinationSocket)

		coord.GET("/stream", h.handleCoordinationStream)

		coord.GET("/stats", h.handleCoordinationStats)
	}
}

// HealthCheck 健康检查接口
func (h *Handlers) HealthCheck(c *gin.Context) {
	// 检查数据库连接
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
			return
		}
	}

	status := gin.H{"status": "healthy"}
	if h.hub != nil {
		status["connections"] = h.hub.GetConnectionCount()
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handlers) handleRecentDispatches(c *gin.Context) {
	if h.journal == nil {
		response.Success(c, "ok", []models.DispatchLog{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		response.Fail(c, "invalid limit", nil)
		return
	}
	logs, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Error("query dispatch logs failed", zap.Error(err))
		response.Error(c, errors.WrapCode(err, http.StatusInternalServerError, "query dispatch logs failed"), nil)
		return
	}
	response.Success(c, "ok", logs)
}

// handleReportEvent 同步处理一个事件，响应中返回本次产生的全部输出
func (h *Handlers) handleReportEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}
	userID := models.UserID(req.UserID)
	ev, err := decodeEvent(userID, req.Type, req.Data)
	if err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	if h.limiter != nil {
		lctx, reached, err := h.limiter.Allow(c.Request.Context(), eventLimitKey(userID))
		if err != nil {
			logger.Warn("event rate limiter unavailable", zap.Error(err))
		} else if reached {
			h.limiter.Deny(c, lctx)
			return
		}
	}

	rec := &conversation.Recorder{}
	herr := h.machine.Handle(c.Request.Context(), ev, rec)
	data := gin.H{"effects": encodeEffects(rec.Effects)}
	if errors.Is(herr, conversation.ErrStoreFailure) {
		// 会话状态无法读写，按服务端故障返回 500
		response.Error(c, herr, data)
		return
	}
	if herr != nil {
		response.Result(c, errors.GetCode(herr), errors.GetMessage(herr), data)
		return
	}
	response.Success(c, "ok", data)
}

func (h *Handlers) handleReportSocket(c *gin.Context) {
	if h.ws == nil {
		response.AbortWithStatus(c, http.StatusServiceUnavailable, "websocket disabled")
		return
	}
	h.ws.Serve(c, c.Query("user_id"))
}

// handleCoordinationSocket 协调员连接自动加入协调组，接收派发的报告
func (h *Handlers) handleCoordinationSocket(c *gin.Context) {
	if h.ws == nil {
		response.AbortWithStatus(c, http.StatusServiceUnavailable, "websocket disabled")
		return
	}
	h.ws.Serve(c, c.Query("coordinator_id"), config.GlobalConfig.CoordChatID)
}

// handleCoordinationStream 协调员的 SSE 订阅，断线重连时按 Last-Event-ID 补发
func (h *Handlers) handleCoordinationStream(c *gin.Context) {
	if h.stream == nil {
		response.AbortWithStatus(c, http.StatusServiceUnavailable, "stream disabled")
		return
	}
	id := c.Query("coordinator_id")
	if id == "" {
		response.Fail(c, "coordinator_id is required", nil)
		return
	}
	h.stream.Serve(c, id, config.GlobalConfig.CoordChatID)
}

func (h *Handlers) handleCoordinationStats(c *gin.Context) {
	group := config.GlobalConfig.CoordChatID
	stats := gin.H{"group": group}
	if h.ws != nil {
		stats = h.ws.GroupStats(group)
	}
	if h.stream != nil {
		stats["stream_subscribers"] = h.stream.Count(group)
	}
	response.Success(c, "ok", stats)
}

// handleSocketMessage socket 上的业务消息，输出推送给该用户的所有连接
func (h *Handlers) handleSocketMessage(conn *websocket.Connection, msg *websocket.Message) {
	userID := models.UserID(conn.UserID)
	ev, err := decodeEvent(userID, msg.Type, msg.Data)
	if err != nil {
		conn.ReplyError(err.Error())
		return
	}

	ctx := context.Background()
	if h.limiter != nil {
		if _, reached, err := h.limiter.Allow(ctx, eventLimitKey(userID)); err == nil && reached {
			conn.ReplyError(websocket.ErrMsgRateLimited)
			return
		}
	}

	if err := h.machine.Handle(ctx, ev, hubPresenter{hub: h.hub}); err != nil {
		logger.Debug("socket event rejected",
			zap.String("user_id", conn.UserID),
			zap.String("type", msg.Type),
			zap.Int("code", errors.GetCode(err)))
	}
}

func eventLimitKey(userID models.UserID) string {
	return "events:" + string(userID)
}
