package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub fans messages out to connected clients. Clients subscribe to rooms:
// every user has a personal room for booking notifications, ride rooms
// carry seat availability updates, and booking rooms carry chat.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case raw := <-h.broadcast:
			h.relay(raw)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoom(client.UserID))

	h.deliver(client, Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: getCurrentTimestamp(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	})
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		h.dropFromRoom(client, roomID)
	}
}

// relay handles raw frames a client pushed onto the broadcast channel.
// Room-addressed messages go to that room, the rest to everyone.
func (h *Hub) relay(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("dropping malformed broadcast frame: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if msg.RoomID != "" {
		h.fanOut(h.rooms[msg.RoomID], msg)
		return
	}
	h.fanOut(h.clients, msg)
}

// fanOut requires the write lock: the slow-consumer branch evicts the
// client, which mutates the hub maps and closes the send channel. A read
// lock here would let two senders race the same eviction.
func (h *Hub) fanOut(targets map[*Client]bool, message Message) {
	data, _ := json.Marshal(message)
	for client := range targets {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the connection rather than block the hub.
			close(client.send)
			delete(h.clients, client)
			for roomID := range client.rooms {
				if room := h.rooms[roomID]; room != nil {
					delete(room, client)
				}
			}
		}
	}
}

func (h *Hub) deliver(client *Client, message Message) {
	data, _ := json.Marshal(message)
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	h.sendToRoom(userRoom(userID), message)
}

// SendRideUpdate pushes seat availability and booking state changes to
// everyone watching the ride.
func (h *Hub) SendRideUpdate(rideID primitive.ObjectID, message Message) {
	h.sendToRoom(rideRoom(rideID), message)
}

// SendChatMessage delivers a message to both parties of a booking chat.
func (h *Hub) SendChatMessage(bookingID primitive.ObjectID, message Message) {
	h.sendToRoom("booking_"+bookingID.Hex(), message)
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		h.fanOut(room, message)
	}
}

func (h *Hub) JoinRide(client *Client, rideID primitive.ObjectID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.joinRoom(client, rideRoom(rideID))
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.dropFromRoom(client, roomID)
	delete(client.rooms, roomID)
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) dropFromRoom(client *Client, roomID string) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

func userRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

func rideRoom(rideID primitive.ObjectID) string {
	return "ride_" + rideID.Hex()
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
