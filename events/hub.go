package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dmoralesp/cafe-pos/models"
)

// Event types pushed to connected POS screens
const (
	EventOrderCompleted = "order_completed"
	EventOrderVoided    = "order_voided"
	EventRewardEarned   = "reward_earned"
	EventShiftOpened    = "shift_opened"
	EventShiftClosed    = "shift_closed"
	EventLowStock       = "low_stock"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub keeps every connected client (admin dashboards, cashier screens) and
// fans broadcasts out to them. Delivery is fire-and-forget: a failed write
// only drops that client's message.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderCompleted -> a sale went through the counter
func BroadcastOrderCompleted(order models.Order) {
	broadcast(Message{
		Event: EventOrderCompleted,
		Data:  order,
	})
}

// BroadcastOrderVoided -> an admin voided a sale
func BroadcastOrderVoided(order models.Order) {
	broadcast(Message{
		Event: EventOrderVoided,
		Data:  order,
	})
}

// BroadcastRewardEarned -> the rule evaluator granted a reward
func BroadcastRewardEarned(reward models.CustomerReward) {
	broadcast(Message{
		Event: EventRewardEarned,
		Data:  reward,
	})
}

// BroadcastShiftOpened -> a cashier opened the register
func BroadcastShiftOpened(shift models.Shift) {
	broadcast(Message{
		Event: EventShiftOpened,
		Data:  shift,
	})
}

// BroadcastShiftClosed -> register closed and reconciled
func BroadcastShiftClosed(shift models.Shift) {
	broadcast(Message{
		Event: EventShiftClosed,
		Data:  shift,
	})
}

// BroadcastLowStock -> a product fell to or below its alert level
func BroadcastLowStock(product models.Product) {
	broadcast(Message{
		Event: EventLowStock,
		Data:  product,
	})
}

// BroadcastMessage -> generic broadcast
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
