package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/codeshell/internal/logging"
)

// Transport handles JSON-RPC 2.0 communication over a byte stream.
// It implements the LSP base protocol with Content-Length headers.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
	log    *logging.Logger

	mu       sync.Mutex // guards pending and handlers
	writeMu  sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]chan *Response
	handlers map[string]NotificationHandler

	closed atomic.Bool
	done   chan struct{}
}

// NotificationHandler handles incoming notifications from the server.
type NotificationHandler func(method string, params json.RawMessage)

// Request represents a JSON-RPC request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	ID     int64
	Result json.RawMessage
	Error  *RPCError
}

// NewTransport creates a transport reading from r and writing to w. c, when
// not nil, is closed with the transport.
func NewTransport(r io.Reader, w io.Writer, c io.Closer, log *logging.Logger) *Transport {
	if log == nil {
		log = logging.Nop()
	}
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   c,
		log:      log,
		pending:  make(map[int64]chan *Response),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins reading messages in a new goroutine.
func (t *Transport) Start(ctx context.Context) {
	go t.readLoop(ctx)
}

// Done is closed when the transport closes.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

// Close closes the transport and releases resources.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.done)

	// Waiting callers observe t.done; channels are left open so a late
	// response cannot race a close.
	t.mu.Lock()
	t.pending = make(map[int64]chan *Response)
	t.mu.Unlock()

	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// IsClosed returns true if the transport has been closed.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// Call sends a request and waits for its response. result may be nil.
func (t *Transport) Call(ctx context.Context, method string, params any, result any) error {
	if t.closed.Load() {
		return ErrShutdown
	}

	id := t.nextID.Add(1)
	ch := make(chan *Response, 1)

	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	if err := t.send(&Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrShutdown
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}
}

// Notify sends a notification (no response expected).
func (t *Transport) Notify(method string, params any) error {
	if t.closed.Load() {
		return ErrShutdown
	}
	return t.send(&Request{JSONRPC: "2.0", Method: method, Params: params})
}

// OnNotification registers a handler for server notifications. The method
// "*" matches notifications without a specific handler.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.handlers[method] = handler
	t.mu.Unlock()
}

func (t *Transport) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return t.writeFrame(data)
}

func (t *Transport) writeFrame(data []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := io.WriteString(t.writer, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (t *Transport) readLoop(ctx context.Context) {
	defer t.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		msg, err := t.readMessage()
		if err != nil {
			if t.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			t.log.Warn("dropping malformed frame", "error", err)
			continue
		}
		t.dispatch(msg)
	}
}

// readMessage reads a single framed message.
func (t *Transport) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "content-length") {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				contentLength = n
			}
		}
	}
	if contentLength <= 0 {
		return nil, ErrMissingContentLength
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// dispatch routes a message by probing its id, method, result and error
// members without decoding the whole payload.
func (t *Transport) dispatch(data []byte) {
	if !gjson.ValidBytes(data) {
		t.log.Warn("invalid json from server")
		return
	}
	fields := gjson.GetManyBytes(data, "id", "method", "result", "error", "params")
	id, method, result, rpcErr, params := fields[0], fields[1], fields[2], fields[3], fields[4]

	switch {
	case id.Exists() && method.Exists():
		t.replyUnsupported(id, method.String())
	case id.Exists() && (result.Exists() || rpcErr.Exists()):
		resp := &Response{ID: id.Int()}
		if result.Exists() {
			resp.Result = json.RawMessage(result.Raw)
		}
		if rpcErr.Exists() {
			resp.Error = &RPCError{
				Code:    int(rpcErr.Get("code").Int()),
				Message: rpcErr.Get("message").String(),
			}
			if d := rpcErr.Get("data"); d.Exists() {
				resp.Error.Data = d.Value()
			}
		}
		t.handleResponse(resp)
	case method.Exists():
		var raw json.RawMessage
		if params.Exists() {
			raw = json.RawMessage(params.Raw)
		}
		t.handleNotification(method.String(), raw)
	}
}

// replyUnsupported answers a server-to-client request with a null result
// so servers that wait on such requests keep going.
func (t *Transport) replyUnsupported(id gjson.Result, method string) {
	reply, err := sjson.SetRawBytes([]byte(`{"jsonrpc":"2.0"}`), "id", []byte(id.Raw))
	if err == nil {
		reply, err = sjson.SetRawBytes(reply, "result", []byte("null"))
	}
	if err != nil {
		t.log.Warn("building reply", "method", method, "error", err)
		return
	}
	t.log.Debug("answering server request", "method", method)
	if err := t.writeFrame(reply); err != nil {
		t.log.Warn("writing reply", "method", method, "error", err)
	}
}

func (t *Transport) handleResponse(resp *Response) {
	if t.closed.Load() {
		return
	}
	t.mu.Lock()
	ch, ok := t.pending[resp.ID]
	if ok {
		delete(t.pending, resp.ID)
	}
	t.mu.Unlock()

	if ok {
		select {
		case ch <- resp:
		default:
		}
	}
}

func (t *Transport) handleNotification(method string, params json.RawMessage) {
	t.mu.Lock()
	handler, ok := t.handlers[method]
	if !ok {
		handler, ok = t.handlers["*"]
	}
	t.mu.Unlock()

	if ok && handler != nil {
		go handler(method, params)
	}
}
