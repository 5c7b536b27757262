package handlers

import (
	"runtime"
	"sync"
	"time"

	"threatscope-web-gui/backend/system"

	"github.com/gofiber/fiber/v2"
)

// SystemStatus represents the current dashboard state
type SystemStatus struct {
	OS            string        `json:"os"`
	Uptime        string        `json:"uptime"`
	RecordCount   int           `json:"record_count"`
	SelectedCount int           `json:"selected_count"`
	LiveMode      bool          `json:"live_mode"`
	IntervalMs    int64         `json:"interval_ms"`
	Events        []SystemEvent `json:"events"`
}

type SystemEvent struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, warning, error, success
	Message string `json:"message"`
}

// Event log storage with mutex for thread safety
var (
	eventLog   []SystemEvent
	eventMutex sync.RWMutex
	startedAt  = time.Now()
)

func init() {
	eventLog = []SystemEvent{}

	AddEvent("success", "ThreatScope backend started")
}

// AddEvent adds a new event to the log
func AddEvent(eventType, message string) {
	eventMutex.Lock()
	defer eventMutex.Unlock()

	event := SystemEvent{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		Message: message,
	}
	eventLog = append([]SystemEvent{event}, eventLog...)
	if len(eventLog) > 100 {
		eventLog = eventLog[:100]
	}

	// Also log to file
	switch eventType {
	case "error":
		system.Error(message)
	case "warning":
		system.Warn(message)
	default:
		system.Info(message)
	}
}

// GetEventLog returns a copy of the event log
func GetEventLog() []SystemEvent {
	eventMutex.RLock()
	defer eventMutex.RUnlock()

	result := make([]SystemEvent, len(eventLog))
	copy(result, eventLog)
	return result
}

// GetSystemStatus returns current dashboard status
func (h *Handler) GetSystemStatus(c *fiber.Ctx) error {
	status := SystemStatus{
		OS:            runtime.GOOS,
		Uptime:        time.Since(startedAt).Round(time.Second).String(),
		RecordCount:   h.Session.Count(),
		SelectedCount: len(h.Session.Selected()),
		LiveMode:      h.Simulator.IsRunning(),
		IntervalMs:    h.Simulator.Interval().Milliseconds(),
		Events:        GetEventLog(),
	}

	return c.JSON(status)
}

// GetEvents returns recent events
func (h *Handler) GetEvents(c *fiber.Ctx) error {
	return c.JSON(GetEventLog())
}
