package handler

import (
	"net/http"
	"time"

	"referral-graph/internal/apierrors"
	"referral-graph/internal/observability"
	"referral-graph/internal/referral/notifier"
	"referral-graph/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message types sent on the observe stream.
const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

// StreamMessage is one frame of the observe stream.
type StreamMessage struct {
	Type     string                 `json:"type"`
	Record   *store.ReferralRecord  `json:"record"`
	Referred []store.ReferralRecord `json:"referred"`
	Error    string                 `json:"error,omitempty"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.opts.AllowedOrigins) == 0 {
				return true
			}
			for _, allowed := range h.opts.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// HandleObserve handles GET /api/referrals/:contact_id/observe. It upgrades to
// a websocket and streams a snapshot frame for the current state and for
// every change after it.
func (h *Handler) HandleObserve(c *gin.Context) {
	contactID := c.Param("contact_id")
	ctx := observability.WithFields(c.Request.Context(),
		observability.Field{Key: "contact_id", Value: contactID},
	)

	sub, err := h.observer.Observe(ctx, contactID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	defer sub.Close()

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn(ctx, "websocket upgrade failed: "+err.Error())
		return
	}
	defer conn.Close()

	ctx = observability.WithFields(ctx, observability.Field{Key: "subscription_id", Value: sub.ID()})
	h.logger.Info(ctx, "observe stream opened")

	// The client only sends control frames; reading surfaces its disconnect.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug(ctx, "observe stream read ended: "+err.Error())
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			h.logger.Info(ctx, "observe stream closed by client")
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case snap, ok := <-sub.Updates():
			if !ok {
				h.closeStream(conn, sub)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshotMessage(snap)); err != nil {
				h.logger.Debug(ctx, "observe stream write failed: "+err.Error())
				return
			}
		}
	}
}

func snapshotMessage(snap notifier.Snapshot) StreamMessage {
	referred := snap.Referred
	if referred == nil {
		referred = []store.ReferralRecord{}
	}
	return StreamMessage{Type: MessageSnapshot, Record: snap.Record, Referred: referred}
}

// closeStream reports why the sequence ended and sends a close frame.
func (h *Handler) closeStream(conn *websocket.Conn, sub *notifier.Subscription) {
	code, text := websocket.CloseNormalClosure, ""
	if err := sub.Err(); err != nil {
		apiErr := apierrors.MapError(err)
		code, text = websocket.CloseInternalServerErr, apiErr.Message
		if apiErr.StatusCode == http.StatusServiceUnavailable {
			code = websocket.CloseGoingAway
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(StreamMessage{Type: MessageError, Error: apiErr.Message})
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}
