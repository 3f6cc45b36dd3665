package socket

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"tablekeep/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	SubscribedType    = "SUBSCRIBED"     // Sent to a client once it is registered
	TableUpdatedType  = "TABLE_UPDATED"  // A table document was overwritten
	ImagesUpdatedType = "IMAGES_UPDATED" // The image list was overwritten

	ImagesTopic = "images"
)

// TableTopic is the topic clients subscribe to for one table.
func TableTopic(docID string) string {
	return "tables/" + docID
}

var ErrHubClosed = errors.New("hub is not running")

type WSMessage struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans change notifications out to the clients subscribed to a topic.
// It only notifies; clients reload through the REST API.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	done       chan struct{}
}

type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	Topic  string
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Topic] == nil {
				h.Rooms[client.Topic] = make(map[*Client]bool)
			}
			h.Rooms[client.Topic][client] = true
			h.mu.Unlock()

			ack, _ := json.Marshal(WSMessage{
				Type:    SubscribedType,
				Topic:   client.Topic,
				UserID:  client.UserID,
				Payload: json.RawMessage(`{"client_id":` + strconv.Quote(client.ID) + `}`),
			})
			client.Send <- ack
			logger.Sugar.Infof("Client %s subscribed to %s", client.ID, client.Topic)

		case client := <-h.Unregister:
			h.remove(client)

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.Topic]))
			for client := range h.Rooms[msg.Topic] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// Lagging client; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.ID)
					h.remove(client)
				}
			}
		}
	}
}

// Publish queues a notification for every subscriber of topic.
func (h *Hub) Publish(msgType, topic, userID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- WSMessage{Type: msgType, Topic: topic, UserID: userID, Payload: raw}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Subscribers returns how many clients are subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[topic])
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Rooms[client.Topic][client]; !ok {
		return
	}
	delete(h.Rooms[client.Topic], client)
	close(client.Send)
	if len(h.Rooms[client.Topic]) == 0 {
		delete(h.Rooms, client.Topic)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.Rooms, topic)
	}
}
