package handler

import (
	"io"

	"github.com/gin-gonic/gin"
)

// changeFeed is the store's subscription surface.
type changeFeed interface {
	Subscribe(fn func()) (unsubscribe func())
}

// EventsHandler streams store change notifications over SSE. Events carry no
// payload; clients re-pull through the records endpoints.
type EventsHandler struct {
	feed changeFeed
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(feed changeFeed) *EventsHandler {
	return &EventsHandler{feed: feed}
}

// Stream godoc
// @Summary Server-sent change notifications
// @Tags Events
// @Produce text/event-stream
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	changed := make(chan struct{}, 1)
	unsubscribe := h.feed.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(io.Writer) bool {
		select {
		case <-changed:
			c.SSEvent("changed", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
