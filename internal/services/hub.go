package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is same-origin in production, open in dev
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one dashboard connection. A client may follow a single
// team, in which case team-scoped pushes are filtered for it.
type Client struct {
	TeamID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	LastSeen time.Time
}

// Feed message types pushed to the dashboard.
const (
	MsgDayResults  = "day_results"
	MsgNews        = "news"
	MsgInboxEvent  = "inbox_event"
	MsgPhaseChange = "phase_change"
)

// FeedMessage is the wire envelope for every push.
type FeedMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	TeamID    string      `json:"team_id,omitempty"`
}

// Hub fans simulation output out to connected dashboards.
type Hub struct {
	clients     map[*Client]bool
	teamClients map[string][]*Client
	broadcast   chan *FeedMessage
	register    chan *Client
	unregister  chan *Client
	logger      *logrus.Logger
	mutex       sync.RWMutex
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		teamClients: make(map[string][]*Client),
		broadcast:   make(chan *FeedMessage, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run owns the client set. Call it once in a goroutine.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-ticker.C:
			h.dropStaleClients()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	if client.TeamID != "" {
		h.teamClients[client.TeamID] = append(h.teamClients[client.TeamID], client)
	}

	h.logger.WithFields(logrus.Fields{
		"team_id":       client.TeamID,
		"total_clients": len(h.clients),
	}).Info("Live feed client connected")

	h.sendToClient(client, &FeedMessage{
		Type:      "connected",
		Data:      map[string]interface{}{"message": "Connected to live league feed"},
		Timestamp: time.Now(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	if client.TeamID != "" {
		followers := h.teamClients[client.TeamID]
		for i, c := range followers {
			if c == client {
				h.teamClients[client.TeamID] = append(followers[:i], followers[i+1:]...)
				break
			}
		}
		if len(h.teamClients[client.TeamID]) == 0 {
			delete(h.teamClients, client.TeamID)
		}
	}

	h.logger.WithField("total_clients", len(h.clients)).Info("Live feed client disconnected")
}

// deliver routes a message: team-scoped pushes reach followers of that
// team, everything else goes to the room.
func (h *Hub) deliver(msg *FeedMessage) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if msg.TeamID != "" {
		for _, client := range h.teamClients[msg.TeamID] {
			h.sendToClient(client, msg)
		}
		return
	}
	for client := range h.clients {
		h.sendToClient(client, msg)
	}
}

func (h *Hub) sendToClient(client *Client, msg *FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal feed message")
		return
	}
	select {
	case client.Send <- data:
		client.LastSeen = time.Now()
	default:
		// Writer is wedged; cut the connection loose.
		h.unregister <- client
	}
}

func (h *Hub) dropStaleClients() {
	h.mutex.RLock()
	var stale []*Client
	now := time.Now()
	for client := range h.clients {
		if now.Sub(client.LastSeen) > 2*time.Minute {
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
	if len(stale) > 0 {
		h.logger.WithField("stale_clients", len(stale)).Debug("Removed stale feed clients")
	}
}

// BroadcastDayResults pushes a completed sim day to every dashboard.
func (h *Hub) BroadcastDayResults(outcome interface{}) {
	h.broadcast <- &FeedMessage{Type: MsgDayResults, Data: outcome, Timestamp: time.Now()}
}

// BroadcastNews pushes headline strings to everyone.
func (h *Hub) BroadcastNews(lines []string) {
	if len(lines) == 0 {
		return
	}
	h.broadcast <- &FeedMessage{Type: MsgNews, Data: lines, Timestamp: time.Now()}
}

// NotifyTeam pushes an event to followers of one club.
func (h *Hub) NotifyTeam(teamID string, event interface{}) {
	h.broadcast <- &FeedMessage{Type: MsgInboxEvent, Data: event, TeamID: teamID, Timestamp: time.Now()}
}

// BroadcastPhaseChange announces regular season, playoffs or offseason
// rollovers.
func (h *Hub) BroadcastPhaseChange(phase string) {
	h.broadcast <- &FeedMessage{
		Type:      MsgPhaseChange,
		Data:      map[string]string{"phase": phase},
		Timestamp: time.Now(),
	}
}

func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a dashboard connection. The optional team
// query parameter scopes team pushes.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade live feed connection")
		return
	}

	client := &Client{
		TeamID:   c.Query("team"),
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      h,
		LastSeen: time.Now(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastSeen = time.Now()
		return nil
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("Live feed read error")
			}
			break
		}
		c.LastSeen = time.Now()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.WithError(err).Error("Failed to write feed message")
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
