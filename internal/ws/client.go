package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// CloseReason is the close frame sent when the hub drops a socket
type CloseReason struct {
	Text string
	Code int
}

// Reasons the hub ends a circles socket
var (
	ReasonSlowConsumer = CloseReason{Code: websocket.CloseTryAgainLater, Text: "falling behind the circle feed"}
	ReasonTooMany      = CloseReason{Code: websocket.ClosePolicyViolation, Text: "too many open circle connections"}
	ReasonShutdown     = CloseReason{Code: websocket.CloseGoingAway, Text: "server shutting down"}
	reasonNormal       = CloseReason{Code: websocket.CloseNormalClosure}
)

// Client is one user's socket on the circle feed. Frames are server-push only;
// anything the browser sends besides control frames is discarded.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	// set by the hub before send is closed
	reason CloseReason
	seq    uint64
}

// NewClient creates a client for userID
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		reason: reasonNormal,
	}
}

// Serve registers the client and runs its socket until either side closes
func (c *Client) Serve() {
	c.hub.Register(c)
	go c.push()
	c.listen()
}

// listen keeps the read deadline alive and notices the browser going away
func (c *Client) listen() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// push writes hub frames and pings; on hub close it sends the close reason
func (c *Client) push() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(c.reason.Code, c.reason.Text)) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
