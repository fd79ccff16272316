package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/imulink/pkg/framework"
)

// DefaultWebsocketPath is where records are streamed.
const DefaultWebsocketPath = "/records"

// WebsocketServer streams records from a Hub as JSON messages.
type WebsocketServer struct {
	Addr string
	Path string
	Hub  *Hub
	Now  func() time.Time
}

// NewWebsocketServer creates a WebsocketServer.
func NewWebsocketServer(addr string, hub *Hub) *WebsocketServer {
	return &WebsocketServer{Addr: addr, Path: DefaultWebsocketPath, Hub: hub, Now: time.Now}
}

// Name implements Named.
func (s *WebsocketServer) Name() string {
	return "websocket"
}

// Handler serves one websocket client until it goes away.
func (s *WebsocketServer) Handler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()
		records, cancel := s.Hub.Subscribe()
		defer cancel()
		glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)
		for rec := range records {
			if err := websocket.JSON.Send(conn, NewEnvelope(rec, s.Now())); err != nil {
				glog.V(2).Infof("websocket client %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		}
	})
}

// Run implements Runnable.
func (s *WebsocketServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler())
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("streaming records on ws://%s%s", s.Addr, s.Path)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
