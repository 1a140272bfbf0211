package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/realtime"
	"github.com/provexa/provexa-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the live attempt stream: expiry pushes, timer
// updates, proctoring signals and WebRTC signaling relay.
type WSHandler struct {
	attempts *service.AttemptService
	hub      *realtime.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, hub *realtime.Hub, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		hub:      hub,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:attempt_id/stream?token=...
// Upgrades to WebSocket and joins the attempt's notification group.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	// Ownership and liveness check before tying up a socket.
	state, err := h.attempts.Timer(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if state.Status.IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "attempt is not active"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("candidate_id", claims.UserID).
		Str("attempt_id", attemptID.String()).
		Logger()

	// The stream is the proctoring channel: a live socket means an open
	// session. The attempt may have turned terminal since the pre-upgrade
	// check, so this can still fail.
	session, err := h.attempts.OpenProctoring(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		wsLog.Warn().Err(err).Msg("proctoring session rejected")
		_ = realtime.WriteError(conn, "attempt is not active")
		return
	}

	// First frame, before the write pump owns the socket.
	if err := realtime.WriteTyped(conn, realtime.ConnectedNotice{
		Event:            realtime.EventConnected,
		AttemptID:        attemptID,
		SessionID:        session.ID,
		RemainingSeconds: state.RemainingSeconds,
	}); err != nil {
		wsLog.Warn().Err(err).Msg("connected frame failed")
		return
	}

	client := realtime.NewClient(attemptID)
	h.hub.Join(client)
	defer func() {
		h.hub.Leave(client)
		client.Close()
	}()

	// The write pump is the socket's only writer; the read loop and the
	// hub both talk to it through the client queue.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for payload := range client.Send() {
			if err := realtime.WriteRaw(conn, payload); err != nil {
				return
			}
		}
	}()

	wsLog.Info().Msg("candidate connected")
	h.readLoop(conn, wsLog, claims.UserID, client)
	wsLog.Info().Msg("candidate disconnected")

	client.Close()
	<-writeDone
}

func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, candidateID int, client *realtime.Client) {
	for {
		var raw json.RawMessage
		if err := realtime.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var envelope realtime.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			client.Push(realtime.ErrorResponse{Event: realtime.EventError, Error: "malformed message"})
			continue
		}

		switch envelope.Action {
		case realtime.ActionPing:
			client.Push(realtime.PongResponse{Event: realtime.EventPong})

		case realtime.ActionConnectionStatus:
			h.handleConnectionStatus(wsLog, candidateID, client, raw)

		case realtime.ActionSignal:
			h.handleSignal(wsLog, client, raw)

		case realtime.ActionJoin:
			// Join happened at upgrade time; the explicit action is an ack.
			client.Push(realtime.PongResponse{Event: realtime.EventPong})

		case realtime.ActionLeave:
			return

		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("unknown action")
			client.Push(realtime.ErrorResponse{Event: realtime.EventError, Error: "unknown action: " + string(envelope.Action)})
		}
	}
}

// handleConnectionStatus feeds the expiry classifier: a status report is
// proof of life, whatever state it claims.
func (h *WSHandler) handleConnectionStatus(wsLog zerolog.Logger, candidateID int, client *realtime.Client, raw json.RawMessage) {
	var req realtime.ConnectionStatusRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		client.Push(realtime.ErrorResponse{Event: realtime.EventError, Error: "malformed connection status"})
		return
	}

	if err := h.attempts.Heartbeat(context.Background(), candidateID, client.AttemptID); err != nil {
		wsLog.Debug().Err(err).Msg("heartbeat rejected")
	}
}

// handleSignal relays WebRTC signaling to the other group members, e.g.
// the proctor's monitoring connection.
func (h *WSHandler) handleSignal(wsLog zerolog.Logger, client *realtime.Client, raw json.RawMessage) {
	var req realtime.SignalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		client.Push(realtime.ErrorResponse{Event: realtime.EventError, Error: "malformed signal"})
		return
	}

	h.hub.BroadcastExcept(client.AttemptID, client, realtime.SignalNotice{
		Event:   realtime.EventSignal,
		Kind:    req.Kind,
		Payload: req.Payload,
	})
	wsLog.Debug().Str("kind", req.Kind).Msg("signal relayed")
}
