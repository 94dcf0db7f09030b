// Package sse pushes handoff-board refresh events to subscribed clients over
// server-sent events. Writes to the board broadcast a topic name; clients
// refetch the whole day's result set for that topic, replacing local state.
package sse

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Topics broadcast on board writes.
const (
	TopicHandoffs   = "handoffs"
	TopicAttendance = "attendance"
)

// Broadcaster fans a message out to every connected client.
type Broadcaster struct {
	clients map[chan string]bool
	mu      sync.Mutex
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]bool),
	}
}

// Register adds a new client channel to the broadcaster.
func (b *Broadcaster) Register(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
}

// Unregister removes a client from the broadcaster and closes its channel.
func (b *Broadcaster) Unregister(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
	}
}

// Broadcast sends a message to all registered clients. Clients that do not
// drain within a second are dropped.
func (b *Broadcaster) Broadcast(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case client <- message:
		case <-time.After(1 * time.Second):
			delete(b.clients, client)
			close(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Board is the process-wide broadcaster for handoff-board events.
var Board = NewBroadcaster()

// Stream is the gin handler serving the event stream. It blocks until the
// client disconnects.
func Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan string)
	Board.Register(clientChan)
	defer Board.Unregister(clientChan)

	fmt.Fprintf(c.Writer, "data: %s\n\n", "connected")
	c.Writer.Flush()

	for {
		select {
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", message)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			// Client disconnected.
			return
		}
	}
}
