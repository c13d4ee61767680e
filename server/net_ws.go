package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 1 << 16
)

// ClientConn 负责发送（写）数据到客户端的轻量包装，实现 Sink
type ClientConn struct {
	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）。
// 只在房间循环中调用，与 Close 不会并发。
func (c *ClientConn) Enqueue(b []byte) {
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// 慢客户端：丢弃，防止阻塞房间循环
	}
}

// Close 关闭发送队列，写协程随之退出并关闭连接
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.send = nil
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				Log.Warnf("ws write: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端输入，解析为 Intent 注入房间
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在循环中移除该玩家
	defer room.RequestLeave(playerID)
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Warnf("ws read: player=%s err=%v", playerID, err)
			}
			return
		}
		in, err := ParseIntent(playerID, payload)
		if err != nil {
			room.metrics.IncRejected()
			Log.Debugf("bad frame from %s: %v", playerID, err)
			continue
		}
		room.OnInput(in)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 来源限制交给 CORS 中间件与反向代理
		return true
	},
}

// HandleWS WebSocket 接入：每个连接分配一个新的会话 ID
func HandleWS(room *Room) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}

		playerID := PlayerID(uuid.NewString())
		client := NewClientConn(ws)
		send := client.send
		if err := room.RequestJoin(c.Request.Context(), playerID, client); err != nil {
			Log.Warnf("join %s: %v", playerID, err)
			_ = ws.Close()
			return
		}

		go client.writePump(send)
		go client.readPump(room, playerID)
	}
}
