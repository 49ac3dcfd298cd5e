// Package sse streams binder feedback to connected form clients over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"addressfill_backend/platform/logger"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventSuggestionPrompt   EventType = "suggestion_prompt"
	EventFieldsApplied      EventType = "fields_applied"
	EventLookupFailed       EventType = "lookup_failed"
	EventSuggestionDeclined EventType = "suggestion_declined"
)

// Event represents an SSE event payload
type Event struct {
	Type  EventType   `json:"type"`
	Group string      `json:"group,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	formID uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // formID -> clients
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

// addClient registers a new client connection
func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.formID] = append(s.clients[c.formID], c)
}

// removeClient unregisters a client connection
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.formID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.formID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.formID]) == 0 {
		delete(s.clients, c.formID)
	}

	close(c.events)
}

// Publish sends an event to every client watching the given form.
func (s *Service) Publish(formID uuid.UUID, event Event) {
	s.mu.RLock()
	clients := s.clients[formID]
	s.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse event buffer full, dropping event", "formId", formID, "type", event.Type)
		}
	}
}

// Handler returns a Gin handler for SSE connections. resolveForm maps the
// request to an existing form session.
func (s *Service) Handler(resolveForm func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		formID, ok := resolveForm(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			formID: formID,
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"formId": formID})
		c.Writer.Flush()

		s.log.Debug("sse client connected", "formId", formID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "formId", formID)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close shuts down the SSE service
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
