// Package transport exposes the running effect instance to remote UIs.
package transport

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/charlesvestal/move-anything-nam/internal/fx"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
)

// Request is one control frame from a client.
type Request struct {
	Op    string `json:"op"` // "get" or "set"
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Response answers a control frame.
type Response struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	OK    bool   `json:"ok"`
}

// ControlServer serves parameter get/set over WebSocket so the Shadow UI
// (or anything speaking the frame format) can drive a standalone instance.
type ControlServer struct {
	inst     *fx.Instance
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewControlServer creates a control server bound to inst and starts
// listening on addr.
func NewControlServer(addr string, inst *fx.Instance) *ControlServer {
	cs := &ControlServer{
		inst: inst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local control surface, not exposed publicly
			},
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/control", cs.Handler())
	cs.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		applog.Infof("control: listening on %s", addr)
		if err := cs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("control: server error: %v", err)
		}
	}()

	return cs
}

// Handler returns the WebSocket upgrade handler for the control endpoint.
func (cs *ControlServer) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := cs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			applog.Errorf("control: upgrade error: %v", err)
			return
		}
		defer conn.Close()

		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(cs.handle(req)); err != nil {
				return
			}
		}
	})
}

func (cs *ControlServer) handle(req Request) Response {
	switch req.Op {
	case "set":
		cs.inst.SetParam(req.Key, req.Value)
		val, ok := cs.inst.GetParam(req.Key)
		return Response{Key: req.Key, Value: val, OK: ok}
	case "get":
		val, ok := cs.inst.GetParam(req.Key)
		return Response{Key: req.Key, Value: val, OK: ok}
	default:
		return Response{Key: req.Key, OK: false}
	}
}

// Close shuts the server down.
func (cs *ControlServer) Close() error {
	if cs.server == nil {
		return nil
	}
	return cs.server.Close()
}
