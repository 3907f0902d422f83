package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // init carries the whole map
	sendBufSize    = 256
)

var (
	ErrClosed         = errors.New("transport: connection closed")
	ErrSendBufferFull = errors.New("transport: send buffer full")
)

// Conn is a websocket connection to the game server. A read pump queues
// every binary frame for Drain; a write pump flushes Send and keeps the
// connection alive with pings. Send and Drain are safe to call from the
// tick loop while the pumps run.
type Conn struct {
	ws    *websocket.Conn
	send  chan []byte
	inbox chan []byte

	done      chan struct{} // closed to stop both pumps
	lost      chan struct{} // closed when the read pump exits
	closeOnce sync.Once
	wg        sync.WaitGroup

	errMu sync.Mutex
	err   error

	dropped atomic.Uint64
}

// Dial connects to url. A non-empty token is checked for expiry and sent
// as a bearer credential.
func Dial(ctx context.Context, url, token string, inboxSize int) (*Conn, error) {
	header := http.Header{}
	if token != "" {
		if _, err := CheckToken(token); err != nil {
			return nil, err
		}
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: writeWait,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	ws, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newConn(ws, inboxSize), nil
}

func newConn(ws *websocket.Conn, inboxSize int) *Conn {
	if inboxSize <= 0 {
		inboxSize = sendBufSize
	}
	c := &Conn{
		ws:    ws,
		send:  make(chan []byte, sendBufSize),
		inbox: make(chan []byte, inboxSize),
		done:  make(chan struct{}),
		lost:  make(chan struct{}),
	}
	c.wg.Add(2)
	go c.readPump()
	go c.writePump()
	return c
}

func (c *Conn) readPump() {
	defer func() {
		close(c.lost)
		c.shutdown()
		c.wg.Done()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
				c.setErr(err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			log.Printf("ignoring non-binary frame (%d bytes)", len(message))
			continue
		}
		select {
		case c.inbox <- message:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		c.wg.Done()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, message); err != nil {
				c.setErr(err)
				c.shutdown()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.setErr(err)
				c.shutdown()
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			c.ws.WriteMessage(websocket.CloseMessage, msg)
			return
		}
	}
}

// Send queues msg for the write pump. A full queue drops the message
// rather than stalling the tick loop.
func (c *Conn) Send(msg []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.dropped.Add(1)
		return ErrSendBufferFull
	}
}

// Drain returns every frame received since the last call, oldest first.
func (c *Conn) Drain() [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.inbox:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Lost is closed once the server side of the connection is gone.
func (c *Conn) Lost() <-chan struct{} {
	return c.lost
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Dropped returns how many outgoing messages were discarded.
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

// Close sends a close frame and waits for both pumps to stop.
func (c *Conn) Close() error {
	c.shutdown()
	c.wg.Wait()
	return c.Err()
}

func (c *Conn) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
