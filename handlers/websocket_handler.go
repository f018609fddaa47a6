package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	json "github.com/goccy/go-json"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/platform/cancel"
	"course_gen_backend/platform/metrics"
	"course_gen_backend/platform/progress"
)

type WSHandler struct {
	hub     *progress.Hub
	cancels cancel.Registry
}

func NewWSHandler(hub *progress.Hub, cancels cancel.Registry) *WSHandler {
	return &WSHandler{hub: hub, cancels: cancels}
}

func (h *WSHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "Not a websocket request"})
}

// HandleProgress reads register/cancel messages until the socket closes.
// Progress events are written by the jobs through the hub.
func (h *WSHandler) HandleProgress(c *websocket.Conn) {
	client := progress.NewClient(c)
	metrics.WSConnections.Inc()
	logging.Logger.Debug("WebSocket connected", "remote", c.RemoteAddr().String())

	defer func() {
		client.Close()
		h.hub.Unregister(client)
		metrics.WSConnections.Dec()
	}()

	ctx := context.Background()
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Logger.Warn("WebSocket closed unexpectedly", "error", err)
			}
			return
		}
		h.Dispatch(ctx, client, msg)
	}
}

// Dispatch applies one client message. Malformed messages and messages
// without a request id are ignored.
func (h *WSHandler) Dispatch(ctx context.Context, client *progress.Client, raw []byte) {
	var msg models.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logging.Logger.Warn("Invalid WebSocket message", "error", err)
		return
	}
	if msg.RequestID == "" {
		return
	}

	switch msg.Type {
	case models.WSMessageRegister:
		h.hub.Register(msg.RequestID, client)
		logging.Logger.Info("Client registered", "requestId", msg.RequestID)
	case models.WSMessageCancel:
		if err := h.cancels.MarkCanceled(ctx, msg.RequestID); err != nil {
			logging.Logger.Error("fail MarkCanceled", "requestId", msg.RequestID, "error", err)
			return
		}
		logging.Logger.Info("Cancel requested", "requestId", msg.RequestID)
		ack := models.WSMessage{Type: models.WSMessageCanceledAck, RequestID: msg.RequestID}
		if err := client.Send(ack); err != nil {
			logging.Logger.Warn("fail send cancel ack", "requestId", msg.RequestID, "error", err)
		}
	default:
		logging.Logger.Debug("Ignoring WebSocket message", "type", msg.Type)
	}
}
