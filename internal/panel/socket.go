package panel

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	// pingInterval is the interval at which to send pings.
	pingInterval = 15 * time.Second
	// pongWait is the duration to wait for a pong response to a ping.
	pongWait = time.Minute
	// writeWait bounds a single write to the socket.
	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return r.Header.Get("Origin") == "" || sameOrigin(r)
	},
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// getSocket streams the page to the client after every render until either side goes away.
func (s *Server) getSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.WithError(err).Trace("closing panel socket")
		}
	}()

	logCtx := s.log.WithField("remote-addr", conn.RemoteAddr())
	logCtx.Debug("panel socket opened")

	updates, unsubscribe := s.viewer.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(st); err != nil {
				logCtx.WithError(err).Debug("panel socket write failed")
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-closed:
			logCtx.Debug("panel socket closed")
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
