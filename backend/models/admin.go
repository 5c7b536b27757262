package models

import (
	"time"
)

type Admin struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"unique;not null" json:"username"`
	Password          string     `gorm:"not null" json:"-"` // Stored hashed
	CreatedAt         time.Time  `json:"created_at"`
	FailedAttempts    int        `gorm:"default:0" json:"-"`
	LastFailedAttempt *time.Time `json:"-"`
	LockedUntil       *time.Time `json:"-"`
}

// DashboardSettings is the single persisted configuration row (ID=1).
// Threat records are never written to the database; only operator preferences
// survive a restart.
type DashboardSettings struct {
	ID                   uint `gorm:"primaryKey" json:"id"`
	SimulationIntervalMs int  `gorm:"default:5000" json:"simulation_interval_ms"` // Live mode tick
	LiveAutostart        bool `gorm:"default:false" json:"live_autostart"`        // Start live mode on boot
	DefaultPageSize      int  `gorm:"default:10" json:"default_page_size"`
	TopAttackersLimit    int  `gorm:"default:5" json:"top_attackers_limit"`
	TopPatternsLimit     int  `gorm:"default:10" json:"top_patterns_limit"`

	// Discord Webhook Notifications
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty"`
	AlertOnCritical   bool   `gorm:"default:false" json:"alert_on_critical"` // Alert when a Critical threat arrives

	UpdatedAt time.Time `json:"updated_at"`
}
