package main

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// hubMessage is the envelope pushed to subscribers.
type hubMessage struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// sendBuffer is how many pushes may queue for one subscriber before it is
	// dropped as too slow.
	sendBuffer = 16
)

// subscriber is one open profile stream. Only its writer goroutine touches
// conn for writes; send is closed by the hub when the subscriber is removed.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop drains send onto the connection. After a failed write it closes
// the connection, which ends the read loop in subscribeProfile and removes
// the subscriber, and keeps draining until the hub closes send.
func (s *subscriber) writeLoop(userID int) {
	for payload := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("[profileHub] write error for user %d: %v", userID, err)
			s.conn.Close()
			for range s.send {
			}
			return
		}
	}
}

// profileHub keeps every open profile subscription per user and pushes the
// stored profile to all of them after each save, so other open sessions
// stay in sync. publish never blocks on the network.
type profileHub struct {
	mu          sync.Mutex
	subscribers map[int][]*subscriber
}

func newProfileHub() *profileHub {
	return &profileHub{subscribers: make(map[int][]*subscriber)}
}

// add registers conn with first as its initial message and starts its writer.
// Queuing first under the lock keeps it ahead of any later publish.
func (hub *profileHub) add(userID int, conn *websocket.Conn, first []byte) *subscriber {
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	sub.send <- first

	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.subscribers[userID] = append(hub.subscribers[userID], sub)
	go sub.writeLoop(userID)
	return sub
}

func (hub *profileHub) remove(userID int, sub *subscriber) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.removeLocked(userID, sub)
}

// removeLocked drops sub and closes its queue. A subscriber that is no
// longer registered is left alone, so its queue is closed exactly once.
func (hub *profileHub) removeLocked(userID int, sub *subscriber) {
	subs := hub.subscribers[userID]
	i := slices.Index(subs, sub)
	if i < 0 {
		return
	}
	close(sub.send)
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(hub.subscribers, userID)
		return
	}
	hub.subscribers[userID] = subs
}

// count returns the number of open subscriptions for a user.
func (hub *profileHub) count(userID int) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.subscribers[userID])
}

// publish queues the profile for every subscription of the user. A
// subscriber whose queue is full is closed and dropped.
func (hub *profileHub) publish(userID int, resp profileResponse) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(hubMessage{Action: "profile", Data: resp})
	if err != nil {
		log.Printf("[profileHub] marshal error for user %d: %v", userID, err)
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, sub := range slices.Clone(hub.subscribers[userID]) {
		select {
		case sub.send <- payload:
		default:
			log.Printf("[profileHub] dropping slow subscriber for user %d", userID)
			sub.conn.Close()
			hub.removeLocked(userID, sub)
		}
	}
}

var upgrader = websocket.Upgrader{
	// Origins are already filtered by the CORS layer for browsers; the token
	// check in authMiddleware is what guards the stream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeProfile upgrades to a websocket, sends the current profile, then
// pushes every later save until the client disconnects.
// GET /api/profile/subscribe?token=... (websocket).
func (h *Handler) subscribeProfile(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[subscribeProfile] upgrade error: %v", err)
		return
	}
	userID := p.UserID
	snapshot, err := json.Marshal(hubMessage{Action: "profile", Data: p.response()})
	if err != nil {
		log.Printf("[subscribeProfile] marshal error: %v", err)
		conn.Close()
		return
	}
	sub := h.hub.add(userID, conn, snapshot)
	defer func() {
		h.hub.remove(userID, sub)
		conn.Close()
	}()

	// Drain client frames until the connection closes; clients only listen.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
