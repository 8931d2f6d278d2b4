package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Options tunes the connection pumps. Zero fields fall back to defaults.
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	WriteWait       time.Duration
	PongWait        time.Duration
	MaxMessageSize  int64
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.ReadBufferSize == 0 {
		opts.ReadBufferSize = 1024
	}
	if opts.WriteBufferSize == 0 {
		opts.WriteBufferSize = 1024
	}
	if opts.WriteWait == 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait == 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.MaxMessageSize == 0 {
		opts.MaxMessageSize = 4096
	}
	return opts
}

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	opts     Options
}

func NewHandler(options *Options) *Handler {
	opts := options.withDefaults()

	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // Configure properly in production
			},
		},
		opts: opts,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userObjectID, h.opts)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) SendRideUpdate(rideID primitive.ObjectID, updateType string, data map[string]interface{}) {
	message := Message{
		Type:      updateType,
		RoomID:    "ride_" + rideID.Hex(),
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	h.hub.SendRideUpdate(rideID, message)
}

func (h *Handler) SendUserNotification(userID primitive.ObjectID, notificationType string, data map[string]interface{}) {
	message := Message{
		Type:      notificationType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	h.hub.SendToUser(userID, message)
}

func (h *Handler) SendChatMessage(bookingID primitive.ObjectID, senderID primitive.ObjectID, data map[string]interface{}) {
	message := Message{
		Type:      "chat_message",
		RoomID:    "booking_" + bookingID.Hex(),
		UserID:    senderID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	h.hub.SendChatMessage(bookingID, message)
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
