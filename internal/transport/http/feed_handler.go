package http

import (
	"log"
	"net/http"

	"quizmaster/internal/session"
	"github.com/gorilla/websocket"
)

// FeedHandler streams session snapshots to spectator websockets. Spectators
// are read-only: commands stay with the terminal UI, the feed only mirrors
// phase, score, streak and time.
type FeedHandler struct {
	session  *session.Session
	upgrader websocket.Upgrader
}

func NewFeedHandler(s *session.Session) *FeedHandler {
	return &FeedHandler{
		session: s,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and forwards every session snapshot until the
// client goes away.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.session.Subscribe()
	defer cancel()

	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		for {
			// Spectators send nothing meaningful; the read loop only
			// notices disconnects and drains control frames.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[session.Snapshot]{Type: "snapshot", Payload: snap}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerGone:
			return
		}
	}
}
