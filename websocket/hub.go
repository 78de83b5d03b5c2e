package websocket

import (
	"log"
	"sync"

	"github.com/edubank/academy/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// TransactionEvent is pushed to the learner and instructor of a transaction
// every time its status changes.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"`
	CourseTitle   string `json:"course_title"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *models.Transaction)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case txn := <-Broadcast:
			event := TransactionEvent{
				TransactionID: txn.ID.String(),
				CourseTitle:   txn.CourseTitle,
				Amount:        txn.Amount,
				Status:        txn.Status,
			}

			for _, recipientID := range []uuid.UUID{txn.LearnerID, txn.InstructorID} {
				clientsMu.RLock()
				conn, ok := clients[recipientID]
				clientsMu.RUnlock()
				if !ok {
					continue
				}
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending event to client %s: %v", recipientID, err)
					conn.Close()
					clientsMu.Lock()
					delete(clients, recipientID)
					clientsMu.Unlock()
				}
			}
		}
	}
}

// Notify hands a status change to the hub without blocking the caller when
// the hub is not running (tests, CLI contexts).
func Notify(txn *models.Transaction) {
	select {
	case Broadcast <- txn:
	default:
	}
}
