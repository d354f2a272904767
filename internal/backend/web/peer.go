package web

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/codeshell/internal/logging"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// peer is one browser connection.
type peer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	log  *logging.Logger
}

func newPeer(conn *websocket.Conn, log *logging.Logger) *peer {
	p := &peer{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
	go p.writePump()
	return p
}

// queue hands data to the writer. A full queue drops the message.
func (p *peer) queue(data []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- data:
		return true
	case <-p.done:
		return false
	default:
		p.log.Warn("send buffer full, dropping message")
		return false
	}
}

func (p *peer) writePump() {
	defer func() {
		p.close()
		_ = p.conn.Close()
	}()
	for {
		select {
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.log.Debug("write failed", "error", err)
				return
			}
		case <-p.done:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = p.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closed"))
			return
		}
	}
}

func (p *peer) close() {
	p.once.Do(func() { close(p.done) })
}

// Done is closed once the peer stops writing.
func (p *peer) Done() <-chan struct{} { return p.done }
