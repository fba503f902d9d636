package out

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lectern/internal/modules/presence/domain"
	"lectern/internal/platform/wire"
)

const writeTimeout = 5 * time.Second

// WSTransport keeps one connection to the hub's presence endpoint. It dials
// on first use and drops the connection after a failed write, or once the
// read loop sees it closed, so the next announcement redials.
type WSTransport struct {
	url   string
	token string

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSTransport(url, token string) *WSTransport {
	return &WSTransport{url: url, token: token}
}

func (t *WSTransport) Send(ctx context.Context, announcement domain.Announcement) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.url == "" {
		return fmt.Errorf("presence url is not configured")
	}
	if t.conn == nil {
		header := http.Header{}
		if t.token != "" {
			header.Set("Authorization", "Bearer "+t.token)
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, header)
		if err != nil {
			return fmt.Errorf("dial presence: %w", err)
		}
		t.conn = conn
		go t.readLoop(conn)
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = t.conn.SetWriteDeadline(deadline)
	err := t.conn.WriteJSON(wire.Presence{
		Type:         wire.FramePresence,
		ActivityType: announcement.ActivityType,
		ActivityName: announcement.ActivityName,
		SentAt:       announcement.SentAt.Unix(),
	})
	if err != nil {
		_ = t.conn.Close()
		t.conn = nil
		return fmt.Errorf("write presence: %w", err)
	}
	return nil
}

// readLoop drains inbound frames so control frames are handled: pings get
// their pong and a close from the hub ends the loop. The hub sends nothing
// else on this endpoint.
func (t *WSTransport) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()
	_ = conn.Close()
}

func (t *WSTransport) connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := t.conn.Close()
	t.conn = nil
	return err
}
