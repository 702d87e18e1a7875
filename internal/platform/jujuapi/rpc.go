package jujuapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/imamik/bundletester/internal/environment"
)

// request is the RPC envelope sent to the API server.
type request struct {
	RequestID uint64 `json:"RequestId"`
	Type      string `json:"Type"`
	Version   int    `json:"Version,omitempty"`
	ID        string `json:"Id,omitempty"`
	Request   string `json:"Request"`
	Params    any    `json:"Params"`
}

// response is the RPC envelope received from the API server.
type response struct {
	RequestID uint64          `json:"RequestId"`
	Error     string          `json:"Error,omitempty"`
	ErrorCode string          `json:"ErrorCode,omitempty"`
	Response  json.RawMessage `json:"Response,omitempty"`
}

// RPCError is an error reported by the API server for a single call.
type RPCError struct {
	Facade  string
	Request string
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s.%s: %s (%s)", e.Facade, e.Request, e.Message, e.Code)
	}
	return fmt.Sprintf("%s.%s: %s", e.Facade, e.Request, e.Message)
}

// Client is a single API connection. Calls are serialized.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
	closed bool
}

// Dial opens an API connection to endpoint.
func Dial(ctx context.Context, dialer *websocket.Dialer, endpoint string) (*Client, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	return &Client{conn: conn}, nil
}

// Call invokes facade.method and decodes the response into result, which may
// be nil. A dropped connection is reported as environment.ErrConnectionClosed
// and leaves the client unusable.
func (c *Client) Call(ctx context.Context, facade, method string, params, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s.%s: %w", facade, method, environment.ErrConnectionClosed)
	}

	// A zero deadline clears any previous one.
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	c.nextID++
	req := request{RequestID: c.nextID, Type: facade, Request: method, Params: params}
	if req.Params == nil {
		req.Params = struct{}{}
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return c.connError(facade, method, err)
	}

	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return c.connError(facade, method, err)
		}
		if resp.RequestID != req.RequestID {
			continue
		}
		if resp.Error != "" {
			return &RPCError{Facade: facade, Request: method, Code: resp.ErrorCode, Message: resp.Error}
		}
		if result == nil || len(resp.Response) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Response, result); err != nil {
			return fmt.Errorf("%s.%s: failed to decode response: %w", facade, method, err)
		}
		return nil
	}
}

// Close closes the connection. Closing twice is harmless.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// connError maps a failed read or write to an error. Only a malformed payload
// leaves the connection usable; any transport failure (close frame, EOF,
// reset, broken pipe, timeout) leaves the websocket in a state gorilla cannot
// recover from, so the client is closed and ErrConnectionClosed reported.
func (c *Client) connError(facade, method string, err error) error {
	if isPayloadError(err) {
		return fmt.Errorf("%s.%s: %w", facade, method, err)
	}
	c.closed = true
	_ = c.conn.Close()
	return fmt.Errorf("%s.%s: %w: %v", facade, method, environment.ErrConnectionClosed, err)
}

func isPayloadError(err error) bool {
	var (
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		unsupportedErr *json.UnsupportedTypeError
		valueErr       *json.UnsupportedValueError
		marshalerErr   *json.MarshalerError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &unsupportedErr) ||
		errors.As(err, &valueErr) ||
		errors.As(err, &marshalerErr)
}
