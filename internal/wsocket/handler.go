package wsocket

import (
	"context"
	"net/http"
	"time"

	"paper_summaries_go_backend/internal/models"
	"paper_summaries_go_backend/internal/services"
	"paper_summaries_go_backend/internal/utils/broker"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler streams paper change events to websocket clients.
type Handler struct {
	upgrader      websocket.Upgrader
	messageBroker *broker.Broker[models.PaperEvent]
}

func NewHandler(upgrader websocket.Upgrader, messageBroker *broker.Broker[models.PaperEvent]) *Handler {
	return &Handler{
		upgrader:      upgrader,
		messageBroker: messageBroker,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading connection")
		return
	}
	defer conn.Close()

	events := h.messageBroker.Subscribe(services.PaperEventsTopic)
	defer h.messageBroker.Unsubscribe(services.PaperEventsTopic, events)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log.Debug().Str("remote", r.RemoteAddr).Msg("Paper event subscriber connected")

	// The read loop only services control frames and notices disconnects.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("remote", r.RemoteAddr).Msg("Paper event subscriber disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Msg("Error sending paper event")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
