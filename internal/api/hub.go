package api

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// Hub pushes open-jobs renders to the kiosk pages over websockets
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// openJobsMessage is the render pushed to pages
type openJobsMessage struct {
	Type string     `json:"type"`
	Jobs jobs.Cache `json:"jobs"`
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]bool)}
}

// RenderOpenJobs broadcasts the open-jobs list. It never blocks: a page that
// cannot keep up misses renders until the next one.
func (h *Hub) RenderOpenJobs(list jobs.Cache) {
	data, err := encodeOpenJobs(list)
	if err != nil {
		log.Printf("Failed to encode open jobs: %v", err)
		return
	}
	h.broadcast(data)
}

// Clients returns the number of connected pages
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve registers a connection, sends it the initial render when the view is
// visible and pumps messages until the page goes away
func (h *Hub) Serve(conn *websocket.Conn, initial jobs.Cache, visible bool) {
	c := &hubClient{conn: conn, send: make(chan []byte, 16)}
	if visible {
		if data, err := encodeOpenJobs(initial); err == nil {
			c.send <- data
		}
	}

	h.mu.Lock()
	h.clients[c] = true
	log.Printf("Kiosk page connected. Total pages: %d", len(h.clients))
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.readLoop()
	}()
	c.writeLoop(done)

	h.mu.Lock()
	delete(h.clients, c)
	log.Printf("Kiosk page disconnected. Remaining pages: %d", len(h.clients))
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Println("WARN: kiosk page send buffer full, dropping render")
		}
	}
}

// readLoop drains the connection so close frames are handled
func (c *hubClient) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Kiosk page read error: %v", err)
			}
			return
		}
	}
}

func (c *hubClient) writeLoop(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Kiosk page write error: %v", err)
				return
			}
		}
	}
}

func encodeOpenJobs(list jobs.Cache) ([]byte, error) {
	if list == nil {
		list = jobs.Cache{}
	}
	return json.Marshal(openJobsMessage{Type: "open_jobs", Jobs: list})
}
