package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
)

const (
	defaultInclusionSeconds = 120
	// maxInclusionSeconds is the longest inclusion window the stick accepts.
	maxInclusionSeconds     = 254

	heartbeatInterval = 30 * time.Second
)

// DiscoveryHandler handles device discovery endpoints
type DiscoveryHandler struct {
	controller device.Controller
	subscriber device.EventSubscriber
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(controller device.Controller, subscriber device.EventSubscriber) *DiscoveryHandler {
	return &DiscoveryHandler{
		controller: controller,
		subscriber: subscriber,
	}
}

// StartDiscovery handles POST /discovery/start
// @Summary      Start device discovery
// @Description  Puts the controller into inclusion mode so new nodes can join
// @Tags         discovery
// @Accept       json
// @Produce      json
// @Param        request  body      types.StartDiscoveryRequest  false  "Inclusion duration (default 120 seconds, max 254)"
// @Success      200      {object}  types.StartDiscoveryResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid duration"
// @Failure      503      {object}  types.ErrorResponse  "No stick"
// @Failure      504      {object}  types.ErrorResponse  "Request timed out"
// @Router       /discovery/start [post]
func (h *DiscoveryHandler) StartDiscovery(c *gin.Context) {
	var req types.StartDiscoveryRequest
	// an empty body means the default window
	_ = c.ShouldBindJSON(&req)

	seconds := req.DurationSeconds
	switch {
	case seconds <= 0:
		seconds = defaultInclusionSeconds
	case seconds > maxInclusionSeconds:
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_duration",
			Message: fmt.Sprintf("Duration cannot exceed %d seconds", maxInclusionSeconds),
		})
		return
	}

	if err := h.controller.PermitJoin(c.Request.Context(), true, seconds); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.StartDiscoveryResponse{
		Status:          "pairing_enabled",
		ExpiresAt:       time.Now().Add(time.Duration(seconds) * time.Second),
		DurationSeconds: seconds,
	})
}

// StopDiscovery handles POST /discovery/stop
// @Summary      Stop device discovery
// @Description  Takes the controller out of inclusion mode
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  types.StopDiscoveryResponse
// @Failure      503  {object}  types.ErrorResponse  "No stick"
// @Failure      504  {object}  types.ErrorResponse  "Request timed out"
// @Router       /discovery/stop [post]
func (h *DiscoveryHandler) StopDiscovery(c *gin.Context) {
	if err := h.controller.PermitJoin(c.Request.Context(), false, 0); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.StopDiscoveryResponse{Status: "pairing_disabled"})
}

// Events handles GET /discovery/events (SSE stream)
// @Summary      Subscribe to controller events
// @Description  Server-Sent Events stream of joins, removals, field changes and unit events
// @Tags         discovery
// @Produce      text/event-stream
// @Param        types  query     string  false  "Comma separated event types to keep, e.g. state_changed,unit_event"
// @Success      200    {string}  string  "SSE event stream"
// @Router       /discovery/events [get]
func (h *DiscoveryHandler) Events(c *gin.Context) {
	keep := eventFilter(c.Query("types"))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(events)

	c.SSEvent("connected", gin.H{"timestamp": time.Now()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			if keep(event.Type) {
				c.SSEvent(event.Type, event)
			}
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"timestamp": time.Now()})
		}
		return true
	})
}

// eventFilter keeps every event type when list is empty.
func eventFilter(list string) func(string) bool {
	if list == "" {
		return func(string) bool { return true }
	}
	wanted := make(map[string]bool)
	for _, t := range strings.Split(list, ",") {
		wanted[strings.TrimSpace(t)] = true
	}
	return func(t string) bool { return wanted[t] }
}
