// Package ws is the subscription point for live ride updates. Clients
// subscribe with their app identifier; ride saves publish the updated record
// to every identifier on the ride's subscriber list.
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type Hub struct {
	clients    map[*Client]bool
	subscribed map[string]map[*Client]bool
	broadcast  chan targeted
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Message struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type targeted struct {
	keys    []string
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		subscribed: make(map[string]map[*Client]bool),
		broadcast:  make(chan targeted, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Publish sends a message to every client subscribed under one of the keys.
func (h *Hub) Publish(keys []string, msgType string, data interface{}) {
	if len(keys) == 0 {
		return
	}

	payload, err := json.Marshal(Message{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
	if err != nil {
		log.Printf("ws: failed to marshal %s message: %v", msgType, err)
		return
	}

	h.broadcast <- targeted{keys: keys, payload: payload}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	if _, ok := h.subscribed[client.Key]; !ok {
		h.subscribed[client.Key] = make(map[*Client]bool)
	}
	h.subscribed[client.Key][client] = true
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if subs, ok := h.subscribed[client.Key]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribed, client.Key)
		}
	}
}

func (h *Hub) deliver(msg targeted) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, key := range msg.keys {
		for client := range h.subscribed[key] {
			select {
			case client.send <- msg.payload:
			default:
				// Slow consumer; drop the update rather than block the hub.
			}
		}
	}
}
