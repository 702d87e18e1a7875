package jujuapi

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var (
	errDrop  = errors.New("drop connection")
	errReset = errors.New("reset connection")
	errJunk  = errors.New("reply with a malformed payload")
)

type apiCall struct {
	Method string
	Params map[string]any
}

type fakeMachine struct {
	AgentState string
	Containers map[string]fakeMachine `json:",omitempty"`
}

type fakeUnit struct {
	AgentState string
	Machine    string
}

type fakeService struct {
	Charm string
	Units map[string]fakeUnit
}

// fakeAPI is a stateful stand-in for the controller API. Destroyed services
// stay visible for linger further FullStatus calls.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []apiCall
	services map[string]fakeService
	machines map[string]fakeMachine
	linger   int
	pending  map[string]int
	password string
	override map[string]func(params map[string]any) (any, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		services: map[string]fakeService{},
		machines: map[string]fakeMachine{"0": {AgentState: "started"}},
		pending:  map[string]int{},
		password: "secret",
		override: map[string]func(map[string]any) (any, error){},
	}
}

func (f *fakeAPI) start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req struct {
			RequestID uint64         `json:"RequestId"`
			Type      string         `json:"Type"`
			Request   string         `json:"Request"`
			Params    map[string]any `json:"Params"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		result, err := f.handle(req.Type+"."+req.Request, req.Params)
		switch {
		case errors.Is(err, errDrop):
			return
		case errors.Is(err, errReset):
			// Linger 0 makes close send RST instead of FIN.
			if tcp, ok := conn.NetConn().(*net.TCPConn); ok {
				_ = tcp.SetLinger(0)
			}
			return
		case errors.Is(err, errJunk):
			if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
				return
			}
			continue
		}
		resp := map[string]any{"RequestId": req.RequestID}
		if err != nil {
			resp["Error"] = err.Error()
		} else if result != nil {
			resp["Response"] = result
		} else {
			resp["Response"] = struct{}{}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (f *fakeAPI) handle(method string, params map[string]any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{Method: method, Params: params})

	if h, ok := f.override[method]; ok {
		return h(params)
	}

	switch method {
	case "Admin.Login":
		if params["Password"] != f.password {
			return nil, errors.New("invalid entity name or password")
		}
		return nil, nil
	case "Client.FullStatus":
		for name, left := range f.pending {
			if left == 0 {
				delete(f.services, name)
				delete(f.pending, name)
				continue
			}
			f.pending[name] = left - 1
		}
		return map[string]any{"Services": f.services, "Machines": f.machines}, nil
	case "Client.ServiceDestroy":
		f.pending[params["ServiceName"].(string)] = f.linger
		return nil, nil
	case "Client.Resolved", "Client.DestroyMachines":
		return nil, nil
	}
	return nil, errors.New("unknown method " + method)
}

func (f *fakeAPI) methods(filter string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if filter == "" || c.Method == filter {
			out = append(out, c)
		}
	}
	return out
}

func writeJenv(t *testing.T, env, content string) string {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, "environments")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".jenv"), []byte(content), 0o600))
	return home
}

const testJenv = `user: admin
password: secret
environ-uuid: 2b7d1c52-8d2b-4e2f-9a35-1f1c2f6f7e10
state-servers:
- 10.0.3.1:17070
`
