package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dvhs/alumnirank/internal/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The directory UI is served from arbitrary hosts in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLeaderboardStream upgrades the connection and forwards live rating
// updates. Updates for the same profile are coalesced while the client is
// slow, so a reconnecting or laggy client sees only the latest rating.
func (s *Server) handleLeaderboardStream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed: %v", err)
		return
	}

	sub := s.Bus.Subscribe()
	if s.Metrics != nil {
		s.Metrics.StreamSubscriberConnected()
	}
	log.Info("leaderboard stream connected")

	defer func() {
		sub.Close()
		conn.Close()
		if s.Metrics != nil {
			s.Metrics.StreamSubscriberDisconnected()
		}
		log.Info("leaderboard stream disconnected")
	}()

	// Reader goroutine: we never expect client messages, but reading is
	// required to process control frames and detect closure.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case _, ok := <-sub.Ready():
			if !ok {
				return
			}
			events := sub.Drain()
			if len(events) == 0 {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(map[string]any{
				"type":   "rating_update",
				"events": events,
			}); err != nil {
				log.Debug("stream write failed: %v", err)
				return
			}
		}
	}
}
