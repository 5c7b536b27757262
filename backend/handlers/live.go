package handlers

import (
	"time"

	"threatscope-web-gui/backend/models"
	"threatscope-web-gui/backend/system"

	"github.com/gofiber/fiber/v2"
)

// StartLive enables live mode: the simulator starts pushing records into the
// session store on its interval.
// POST /api/live/start {"interval_ms": 5000}
func (h *Handler) StartLive(c *fiber.Ctx) error {
	var input struct {
		IntervalMs int `json:"interval_ms"`
	}
	// Body is optional; the persisted settings interval is the fallback
	_ = c.BodyParser(&input)

	interval := time.Duration(input.IntervalMs) * time.Millisecond
	if input.IntervalMs <= 0 {
		var settings models.DashboardSettings
		if err := h.DB.First(&settings, 1).Error; err == nil && settings.SimulationIntervalMs > 0 {
			interval = time.Duration(settings.SimulationIntervalMs) * time.Millisecond
		} else {
			interval = 0 // simulator falls back to its default
		}
	}

	h.Simulator.Start(interval, h.onGeneratedThreat)

	AddEvent("success", "Live mode enabled")
	return c.JSON(fiber.Map{
		"live":        true,
		"interval_ms": h.Simulator.Interval().Milliseconds(),
	})
}

// StopLive disables live mode.
// POST /api/live/stop
func (h *Handler) StopLive(c *fiber.Ctx) error {
	h.Simulator.Stop()
	AddEvent("info", "Live mode disabled")
	return c.JSON(fiber.Map{"live": false})
}

// GetLiveStatus reports whether live mode is running.
// GET /api/live
func (h *Handler) GetLiveStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"live":        h.Simulator.IsRunning(),
		"interval_ms": h.Simulator.Interval().Milliseconds(),
	})
}

// ResumeLive starts the simulator outside of a request, used at boot when
// the persisted settings say live mode was left on.
func (h *Handler) ResumeLive(interval time.Duration) {
	h.Simulator.Start(interval, h.onGeneratedThreat)
}

// onGeneratedThreat merges a simulated record into the session in arrival
// order and fires alerts for critical ones when configured.
func (h *Handler) onGeneratedThreat(record models.ThreatRecord) {
	if err := h.Session.Add(record); err != nil {
		system.Warn("Dropping generated threat: %v", err)
		return
	}

	if record.Severity == "Critical" && h.Webhook != nil && h.Webhook.IsEnabled() {
		var settings models.DashboardSettings
		if err := h.DB.First(&settings, 1).Error; err == nil && settings.AlertOnCritical {
			go func() {
				if err := h.Webhook.SendThreatAlert(record); err != nil {
					system.Warn("Failed to send threat alert: %v", err)
				}
			}()
		}
	}
}
