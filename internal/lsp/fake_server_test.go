package lsp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func readFrame(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			length, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}
	body := make([]byte, length)
	_, err := io.ReadFull(r, body)
	return body, err
}

func writeFrame(w io.Writer, body string) error {
	_, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	return err
}

// fakeServer is a scripted language server on one end of a net.Pipe.
type fakeServer struct {
	conn     net.Conn
	r        *bufio.Reader
	notified chan string
	exited   chan struct{}
}

func newFakeServer(t *testing.T) (*fakeServer, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	s := &fakeServer{
		conn:     server,
		r:        bufio.NewReader(server),
		notified: make(chan string, 16),
		exited:   make(chan struct{}),
	}
	t.Cleanup(func() { server.Close() })
	return s, client
}

func (s *fakeServer) serve() {
	defer close(s.exited)
	for {
		body, err := readFrame(s.r)
		if err != nil {
			return
		}
		msg := gjson.ParseBytes(body)
		id := msg.Get("id")
		method := msg.Get("method").String()

		if !id.Exists() {
			s.notified <- method
			if method == "exit" {
				return
			}
			continue
		}

		var result string
		switch method {
		case "initialize":
			result = `{"capabilities":{"definitionProvider":true},"serverInfo":{"name":"fake-gd","version":"0.1"}}`
		case "textDocument/definition":
			line := msg.Get("params.position.line").Int()
			result = fmt.Sprintf(`[{"uri":"file:///proj/base.gd","range":{"start":{"line":%d,"character":2},"end":{"line":%d,"character":8}}}]`, line+10, line+10)
		default:
			result = "null"
		}
		if err := writeFrame(s.conn, fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":%s}`, id.Raw, result)); err != nil {
			return
		}
	}
}

func (s *fakeServer) publish(body string) error {
	return writeFrame(s.conn, body)
}
