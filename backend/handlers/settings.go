package handlers

import (
	"net/http"
	"time"

	"threatscope-web-gui/backend/models"
	"threatscope-web-gui/backend/system"

	"github.com/gofiber/fiber/v2"
)

// GetSettings - Get current dashboard settings
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	var settings models.DashboardSettings

	// Get or create settings (ID=1 is the single row)
	result := h.DB.First(&settings, 1)
	if result.Error != nil {
		settings = models.DashboardSettings{
			ID:                   1,
			SimulationIntervalMs: 5000,
			DefaultPageSize:      10,
			TopAttackersLimit:    5,
			TopPatternsLimit:     10,
		}
		h.DB.Create(&settings)
	}

	return c.JSON(settings)
}

// UpdateSettings - Update dashboard settings
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var input struct {
		SimulationIntervalMs int    `json:"simulation_interval_ms"`
		LiveAutostart        bool   `json:"live_autostart"`
		DefaultPageSize      int    `json:"default_page_size"`
		TopAttackersLimit    int    `json:"top_attackers_limit"`
		TopPatternsLimit     int    `json:"top_patterns_limit"`
		DiscordWebhookURL    string `json:"discord_webhook_url"`
		AlertOnCritical      bool   `json:"alert_on_critical"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	// Get or create settings
	var settings models.DashboardSettings
	result := h.DB.First(&settings, 1)
	if result.Error != nil {
		settings.ID = 1
	}

	if input.SimulationIntervalMs > 0 {
		settings.SimulationIntervalMs = input.SimulationIntervalMs
	}
	settings.LiveAutostart = input.LiveAutostart
	if input.DefaultPageSize > 0 {
		settings.DefaultPageSize = input.DefaultPageSize
	}
	if input.TopAttackersLimit > 0 {
		settings.TopAttackersLimit = input.TopAttackersLimit
	}
	if input.TopPatternsLimit > 0 {
		settings.TopPatternsLimit = input.TopPatternsLimit
	}
	settings.DiscordWebhookURL = input.DiscordWebhookURL
	settings.AlertOnCritical = input.AlertOnCritical

	if result.Error != nil {
		h.DB.Create(&settings)
	} else {
		h.DB.Save(&settings)
	}

	// Update Webhook Service
	if h.Webhook != nil {
		h.Webhook.SetWebhookURL(settings.DiscordWebhookURL)
	}

	// Restart the simulator with the new interval if live mode is running
	if h.Simulator.IsRunning() {
		h.Simulator.Start(time.Duration(settings.SimulationIntervalMs)*time.Millisecond, h.onGeneratedThreat)
	}

	system.Info("Dashboard settings updated: interval=%dms, alerts=%v", settings.SimulationIntervalMs, settings.AlertOnCritical)
	AddEvent("success", "Dashboard settings applied")

	return c.JSON(fiber.Map{"message": "Settings applied successfully", "settings": settings})
}

// TestWebhook sends a test notification to the configured Discord webhook
func (h *Handler) TestWebhook(c *fiber.Ctx) error {
	if h.Webhook == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "Webhook service not available"})
	}

	// Get webhook URL from DB in case it was just updated
	var settings models.DashboardSettings
	if err := h.DB.First(&settings, 1).Error; err == nil && settings.DiscordWebhookURL != "" {
		h.Webhook.SetWebhookURL(settings.DiscordWebhookURL)
	}

	if !h.Webhook.IsEnabled() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Discord webhook URL not configured"})
	}

	if err := h.Webhook.SendTestAlert(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Test notification sent successfully"})
}
