package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// newUpgrader 根据配置创建WebSocket升级器
func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// 客户端为现场终端与协调台，不做 Origin 限制
			return true
		},
		EnableCompression: cfg.EnableCompression,
	}
}

// ServeWS 升级连接并注册到 Hub，groups 为连接初始加入的组
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID string, groups ...string) (*Connection, error) {
	upgrader := newUpgrader(hub.config)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("WebSocket升级失败: %v", err)
		return nil, err
	}

	// 压缩设置
	if hub.config.EnableCompression {
		conn.EnableWriteCompression(true)
		if hub.config.CompressionLevel != 0 {
			_ = conn.SetCompressionLevel(hub.config.CompressionLevel)
		}
	}

	connection := &Connection{
		ID:       "conn_" + uuid.NewString(),
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, hub.config.MessageBufferSize),
		Hub:      hub,
		LastPing: time.Now(),
		Groups:   make(map[string]bool, len(groups)),
	}
	for _, g := range groups {
		if g != "" {
			connection.Groups[g] = true
		}
	}

	if err := hub.registerConnection(connection); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return nil, err
	}

	go connection.writePump()
	go connection.readPump()
	return connection, nil
}

// readPump 读取消息的协程
func (c *Connection) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
			c.Hub.unregisterConnection(c)
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(int64(c.Hub.config.MaxMessageSize))
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		return c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Errorf("WebSocket读取错误: %v", err)
			}
			return
		}
		c.touch()
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))

		c.handleMessage(message)
	}
}

// writePump 发送消息的协程
func (c *Connection) writePump() {
	interval := c.Hub.config.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(time.Duration(float64(interval) * 0.9))
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条消息单独成帧，客户端按帧解码 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.LastPing = time.Now()
	c.mu.Unlock()
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logrus.Warnf("消息解析失败: %v", err)
		c.ReplyError(ErrMsgInvalidMessageData)
		return
	}

	// 发送者以连接身份为准
	msg.From = c.UserID

	switch msg.Type {
	case MessageTypePing:
		c.Hub.reply(c, &Message{Type: MessageTypePong})
	case MessageTypeJoinGroup, MessageTypeLeaveGroup:
		c.handleGroup(&msg)
	default:
		c.Hub.mu.RLock()
		fn := c.Hub.onMessage
		c.Hub.mu.RUnlock()
		if fn == nil {
			logrus.Warnf("未知的消息类型: %s", msg.Type)
			return
		}
		fn(c, &msg)
	}
}

func (c *Connection) handleGroup(msg *Message) {
	var group string
	if err := json.Unmarshal(msg.Data, &group); err != nil || group == "" {
		logrus.Warnf("无效的组名: %s", string(msg.Data))
		c.ReplyError(ErrMsgInvalidMessageData)
		return
	}

	ack := &Message{Type: MessageTypeGroupJoined, Data: msg.Data}
	if msg.Type == MessageTypeJoinGroup {
		c.Hub.JoinGroup(c, group)
		logrus.Infof("用户 %s 加入组 %s", c.UserID, group)
	} else {
		c.Hub.LeaveGroup(c, group)
		ack.Type = MessageTypeGroupLeft
		logrus.Infof("用户 %s 离开组 %s", c.UserID, group)
	}
	c.Hub.reply(c, ack)
}

// ReplyError 向当前连接回复一条 error 消息
func (c *Connection) ReplyError(text string) {
	msg, err := NewMessage(MessageTypeError, map[string]string{"error": text})
	if err != nil {
		return
	}
	c.Hub.reply(c, msg)
}

// IsInGroup 检查是否在指定组中
func (c *Connection) IsInGroup(groupName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Groups[groupName]
}

// GetGroups 获取连接所属的组
func (c *Connection) GetGroups() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	groups := make([]string, 0, len(c.Groups))
	for group := range c.Groups {
		groups = append(groups, group)
	}
	return groups
}
