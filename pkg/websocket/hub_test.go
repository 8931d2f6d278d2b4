package websocket

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(h *Hub, userID primitive.ObjectID, sendBuffer int) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, sendBuffer),
		UserID: userID,
		rooms:  make(map[string]bool),
	}
}

func TestSendRideUpdateReachesWatchers(t *testing.T) {
	h := NewHub()
	rideID := primitive.NewObjectID()

	client := newTestClient(h, primitive.NewObjectID(), 8)
	h.addClient(client)
	h.JoinRide(client, rideID)
	<-client.send // welcome frame

	h.SendRideUpdate(rideID, Message{Type: "booking_confirmed", Timestamp: getCurrentTimestamp()})

	select {
	case frame := <-client.send:
		if len(frame) == 0 {
			t.Error("empty frame delivered")
		}
	default:
		t.Fatal("no frame delivered to ride watcher")
	}
}

func TestConcurrentFanOutEvictsSlowConsumerOnce(t *testing.T) {
	h := NewHub()
	rideID := primitive.NewObjectID()

	// The healthy client has room for every frame; the slow one has a
	// full buffer, so every send to it takes the eviction branch.
	healthy := newTestClient(h, primitive.NewObjectID(), 32)
	slow := newTestClient(h, primitive.NewObjectID(), 1)

	h.addClient(healthy)
	h.addClient(slow) // welcome frame fills slow's buffer
	h.JoinRide(healthy, rideID)
	h.JoinRide(slow, rideID)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.SendRideUpdate(rideID, Message{Type: "booking_confirmed", Timestamp: getCurrentTimestamp()})
		}()
	}
	wg.Wait()

	// Racing senders must not double-close the send channel or corrupt
	// the room maps; the slow client ends up evicted exactly once.
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[slow] {
		t.Error("slow client still registered after eviction")
	}
	if !h.clients[healthy] {
		t.Error("healthy client was evicted")
	}
	if room := h.rooms["ride_"+rideID.Hex()]; room[slow] {
		t.Error("slow client still in ride room after eviction")
	}
}

func TestLeaveRoomDropsEmptyRooms(t *testing.T) {
	h := NewHub()
	rideID := primitive.NewObjectID()

	client := newTestClient(h, primitive.NewObjectID(), 2)
	h.addClient(client)
	h.JoinRide(client, rideID)

	roomID := "ride_" + rideID.Hex()
	h.LeaveRoom(client, roomID)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.rooms[roomID]; ok {
		t.Error("empty ride room not removed")
	}
	if client.rooms[roomID] {
		t.Error("client still tracks the left room")
	}
}
