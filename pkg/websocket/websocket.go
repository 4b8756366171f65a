package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"AvisoBot/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotConnected = errors.New(ErrMsgUserNotConnected)
	ErrNoGroupMembers   = errors.New(ErrMsgNoGroupMembers)
	ErrHubClosed        = errors.New(ErrMsgHubClosed)
)

// Message 定义WebSocket消息结构，Data 按 Type 解码
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Group     string          `json:"group,omitempty"`
}

// NewMessage 以 payload 的 JSON 编码作为 Data 构造消息
func NewMessage(typ string, payload interface{}) (*Message, error) {
	msg := &Message{Type: typ, Timestamp: time.Now().Unix()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return msg, nil
}

// MessageHandler 处理业务消息，系统消息（ping、join_group 等）由 Hub 自行处理
type MessageHandler func(conn *Connection, msg *Message)

// Connection 表示一个WebSocket连接
type Connection struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	LastPing time.Time
	alive    atomic.Bool
	mu       sync.RWMutex
	Groups   map[string]bool
}

func (c *Connection) IsAlive() bool { return c.alive.Load() }

// Hub 管理所有WebSocket连接
type Hub struct {
	// 注册的连接
	connections map[string]*Connection
	// 用户ID到连接ID的映射
	userConnections map[string]map[string]bool
	// 组到连接ID的映射
	groupConnections map[string]map[string]bool
	// 注销连接通道
	unregister chan *Connection
	// 连接计数
	connectionCount int64
	// 配置
	config *Config
	// 业务消息回调
	onMessage MessageHandler
	metrics   *metrics.Metrics
	// 互斥锁
	mu sync.RWMutex
	// 上下文
	ctx    context.Context
	cancel context.CancelFunc
}

type HubOption func(*Hub)

func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithMessageHandler 设置业务消息回调
func WithMessageHandler(fn MessageHandler) HubOption {
	return func(h *Hub) { h.onMessage = fn }
}

// NewHub 创建新的Hub实例
func NewHub(config *Config, opts ...HubOption) *Hub {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		connections:      make(map[string]*Connection),
		userConnections:  make(map[string]map[string]bool),
		groupConnections: make(map[string]map[string]bool),
		unregister:       make(chan *Connection, 1000),
		config:           config,
		ctx:              ctx,
		cancel:           cancel,
	}
	for _, opt := range opts {
		opt(hub)
	}

	go hub.run()
	return hub
}

// SetMessageHandler 替换业务消息回调，须在接受连接前调用
func (h *Hub) SetMessageHandler(fn MessageHandler) {
	h.mu.Lock()
	h.onMessage = fn
	h.mu.Unlock()
}

// run Hub主循环
func (h *Hub) run() {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case conn := <-h.unregister:
			h.unregisterConnection(conn)
		case <-ticker.C:
			h.checkHeartbeats()
		}
	}
}

// registerConnection 注册连接；同步执行，返回后即可向该用户投递
func (h *Hub) registerConnection(conn *Connection) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return ErrHubClosed
	}
	// 检查最大连接数
	if atomic.LoadInt64(&h.connectionCount) >= h.config.MaxConnections {
		logrus.Warnf("达到最大连接数限制: %d", h.config.MaxConnections)
		return errors.New(ErrMsgConnectionLimitExceeded)
	}

	conn.alive.Store(true)
	h.connections[conn.ID] = conn
	atomic.AddInt64(&h.connectionCount, 1)

	// 添加到用户连接映射
	if conn.UserID != "" {
		if h.userConnections[conn.UserID] == nil {
			h.userConnections[conn.UserID] = make(map[string]bool)
		}
		h.userConnections[conn.UserID][conn.ID] = true
	}

	// 添加到组连接映射
	conn.mu.RLock()
	for group := range conn.Groups {
		h.addToGroupLocked(group, conn.ID)
	}
	conn.mu.RUnlock()

	h.metrics.ConnectionOpened()
	logrus.Infof("WebSocket连接已注册: %s, 用户: %s, 当前连接数: %d",
		conn.ID, conn.UserID, atomic.LoadInt64(&h.connectionCount))
	return nil
}

// unregisterConnection 注销连接
func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.connections[conn.ID]; !exists {
		return
	}
	delete(h.connections, conn.ID)
	atomic.AddInt64(&h.connectionCount, -1)
	conn.alive.Store(false)

	// 从用户连接映射中移除
	if conn.UserID != "" && h.userConnections[conn.UserID] != nil {
		delete(h.userConnections[conn.UserID], conn.ID)
		if len(h.userConnections[conn.UserID]) == 0 {
			delete(h.userConnections, conn.UserID)
		}
	}

	// 从组连接映射中移除
	conn.mu.RLock()
	for group := range conn.Groups {
		h.removeFromGroupLocked(group, conn.ID)
	}
	conn.mu.RUnlock()

	close(conn.Send)
	h.metrics.ConnectionClosed()
	logrus.Infof("WebSocket连接已注销: %s, 当前连接数: %d",
		conn.ID, atomic.LoadInt64(&h.connectionCount))
}

func (h *Hub) addToGroupLocked(group, connID string) {
	if h.groupConnections[group] == nil {
		h.groupConnections[group] = make(map[string]bool)
	}
	h.groupConnections[group][connID] = true
}

func (h *Hub) removeFromGroupLocked(group, connID string) {
	if h.groupConnections[group] != nil {
		delete(h.groupConnections[group], connID)
		if len(h.groupConnections[group]) == 0 {
			delete(h.groupConnections, group)
		}
	}
}

func encode(msg *Message) ([]byte, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	return json.Marshal(msg)
}

// SendToUser 发送消息给用户的所有连接，返回成功入队的连接数
func (h *Hub) SendToUser(userID string, msg *Message) (int, error) {
	data, err := encode(msg)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID := range h.userConnections[userID] {
		if conn, ok := h.connections[connID]; ok && conn.IsAlive() {
			if h.trySend(conn, data) {
				delivered++
			} else {
				logrus.Warnf("用户 %s 的连接 %s 发送缓冲区已满", userID, connID)
			}
		}
	}
	if delivered == 0 {
		return 0, ErrUserNotConnected
	}
	return delivered, nil
}

// SendToGroup 发送消息给组内所有连接，返回成功入队的连接数
func (h *Hub) SendToGroup(group string, msg *Message) (int, error) {
	data, err := encode(msg)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID := range h.groupConnections[group] {
		if conn, ok := h.connections[connID]; ok && conn.IsAlive() {
			if h.trySend(conn, data) {
				delivered++
			} else {
				logrus.Warnf("组 %s 的连接 %s 发送缓冲区已满", group, connID)
			}
		}
	}
	if delivered == 0 {
		return 0, ErrNoGroupMembers
	}
	return delivered, nil
}

// reply 回复单个连接，连接已注销时丢弃
func (h *Hub) reply(conn *Connection, msg *Message) {
	data, err := encode(msg)
	if err != nil {
		logrus.Errorf("消息序列化失败: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[conn.ID]; ok {
		if !h.trySend(conn, data) {
			logrus.Warnf("连接 %s 发送缓冲区已满", conn.ID)
		}
	}
}

// Notify 把报告文本投递到协调组，组内无在线成员时返回错误
func (h *Hub) Notify(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := NewMessage(MessageTypeAviso, map[string]string{"text": text})
	if err != nil {
		return err
	}
	msg.Group = destination
	_, err = h.SendToGroup(destination, msg)
	return err
}

// JoinGroup 将连接加入组
func (h *Hub) JoinGroup(conn *Connection, group string) {
	conn.mu.Lock()
	conn.Groups[group] = true
	conn.mu.Unlock()

	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; ok {
		h.addToGroupLocked(group, conn.ID)
	}
	h.mu.Unlock()
}

// LeaveGroup 将连接移出组
func (h *Hub) LeaveGroup(conn *Connection, group string) {
	conn.mu.Lock()
	delete(conn.Groups, group)
	conn.mu.Unlock()

	h.mu.Lock()
	h.removeFromGroupLocked(group, conn.ID)
	h.mu.Unlock()
}

// checkHeartbeats 检查心跳
func (h *Hub) checkHeartbeats() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	for _, conn := range h.connections {
		conn.mu.RLock()
		last := conn.LastPing
		conn.mu.RUnlock()
		if now.Sub(last) > h.config.ConnectionTimeout {
			logrus.Warnf("连接 %s 心跳超时，准备关闭", conn.ID)
			conn.alive.Store(false)
			if conn.Conn != nil {
				conn.Conn.Close()
			}
		}
	}
}

// GetConnectionCount 获取当前连接数
func (h *Hub) GetConnectionCount() int64 {
	return atomic.LoadInt64(&h.connectionCount)
}

// GetUserConnections 获取用户的连接数
func (h *Hub) GetUserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConnections[userID])
}

// GetGroupConnections 获取组的连接数
func (h *Hub) GetGroupConnections(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groupConnections[group])
}

// Close 关闭Hub
func (h *Hub) Close() {
	h.cancel()

	// 关闭所有连接，读协程退出后各自注销
	h.mu.Lock()
	for _, conn := range h.connections {
		conn.alive.Store(false)
		if conn.Conn != nil {
			conn.Conn.Close()
		}
	}
	h.mu.Unlock()

	logrus.Info("WebSocket Hub已关闭")
}

// trySend 背压策略，调用方须持有 h.mu 读锁
func (h *Hub) trySend(conn *Connection, data []byte) bool {
	if h.config.DropOnFull {
		select {
		case conn.Send <- data:
			return true
		default:
		}
	} else {
		// 非丢弃模式：限定等待时长
		timeout := h.config.SendTimeout
		if timeout <= 0 {
			timeout = 50 * time.Millisecond
		}
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case conn.Send <- data:
			return true
		case <-t.C:
		}
	}
	if h.config.CloseOnBackpressure && conn.Conn != nil {
		conn.Conn.Close()
	}
	return false
}
