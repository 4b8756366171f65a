package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// EventAviso 协调中心收到的报告
const EventAviso = "aviso"

var ErrNoSubscribers = errors.New("no subscribers in group")

// Event 一条已发布的事件，ID 全局递增，用于 Last-Event-ID 重放
type Event struct {
	ID    uint64
	Group string
	Name  string
	Data  string
}

func (e Event) format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\n", e.ID)
	if e.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Name)
	}
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	return b.String()
}

type Client struct {
	id     string
	groups map[string]bool
	ch     chan Event
	done   chan struct{}
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	groups   map[string]map[string]bool // group -> clientID set
	seq      uint64
	history  *expirable.LRU[uint64, Event]
	interval time.Duration
	retryMs  int
}

type Config struct {
	PingInterval time.Duration
	HistorySize  int
	HistoryTTL   time.Duration
}

func NewHub(cfg Config) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 256
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = time.Hour
	}
	return &Hub{
		clients:  make(map[string]*Client),
		groups:   make(map[string]map[string]bool),
		history:  expirable.NewLRU[uint64, Event](cfg.HistorySize, nil, cfg.HistoryTTL),
		interval: cfg.PingInterval,
		retryMs:  5000,
	}
}

// Subscribe 注册客户端；同 id 重复订阅时替换旧连接
func (h *Hub) Subscribe(id string, groups ...string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[id]; ok {
		h.removeLocked(old)
	}
	c := &Client{id: id, groups: make(map[string]bool), ch: make(chan Event, 64), done: make(chan struct{})}
	h.clients[id] = c
	for _, g := range groups {
		c.groups[g] = true
		if h.groups[g] == nil {
			h.groups[g] = make(map[string]bool)
		}
		h.groups[g][id] = true
	}
	return c
}

// Unsubscribe 仅移除仍是 c 本身的订阅
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *Client) {
	close(c.done)
	for g := range c.groups {
		delete(h.groups[g], c.id)
		if len(h.groups[g]) == 0 {
			delete(h.groups, g)
		}
	}
	delete(h.clients, c.id)
}

// Count 组内订阅者数量
func (h *Hub) Count(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Publish 向组发布事件并记入历史，返回投递成功的订阅者数（缓冲区满的订阅者被跳过）
func (h *Hub) Publish(group, name string, v interface{}) (Event, int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Event{}, 0, err
	}

	h.mu.Lock()
	h.seq++
	ev := Event{ID: h.seq, Group: group, Name: name, Data: string(b)}
	h.history.Add(ev.ID, ev)
	delivered := 0
	for id := range h.groups[group] {
		if c := h.clients[id]; c != nil {
			select {
			case c.ch <- ev:
				delivered++
			default:
			}
		}
	}
	h.mu.Unlock()
	return ev, delivered, nil
}

// Notify 把报告文本推送给协调组的订阅者；无人在线时返回错误以便重试
func (h *Hub) Notify(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, n, err := h.Publish(destination, EventAviso, map[string]string{"text": text})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscribers, destination)
	}
	return nil
}

// missed 返回组内 ID 大于 after 的历史事件，按发布顺序
func (h *Hub) missed(group string, after uint64) []Event {
	var out []Event
	for _, id := range h.history.Keys() {
		if id <= after {
			continue
		}
		if ev, ok := h.history.Peek(id); ok && ev.Group == group {
			out = append(out, ev)
		}
	}
	return out
}

// Serve 以 text/event-stream 输出组内事件，携带 Last-Event-ID 时先重放错过的事件
func (h *Hub) Serve(c *gin.Context, clientID, group string) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "retry: %d\n\n", h.retryMs)

	client := h.Subscribe(clientID, group)
	defer h.Unsubscribe(client)

	var sent uint64
	if last, err := strconv.ParseUint(c.GetHeader("Last-Event-ID"), 10, 64); err == nil {
		sent = last
		for _, ev := range h.missed(group, last) {
			_, _ = c.Writer.Write([]byte(ev.format()))
			sent = ev.ID
		}
	}
	flusher.Flush()

	ping := time.NewTicker(h.interval)
	defer ping.Stop()

	for {
		select {
		case <-client.done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			fmt.Fprintf(c.Writer, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		case ev := <-client.ch:
			// 重放与订阅之间发布的事件可能已写出
			if ev.ID <= sent {
				continue
			}
			sent = ev.ID
			_, _ = c.Writer.Write([]byte(ev.format()))
			flusher.Flush()
		}
	}
}
