package handlers

import (
	"threatscope-web-gui/backend/services"

	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	Session   *services.SessionStore
	Simulator *services.ThreatSimulator
	Webhook   *services.WebhookService
	JWTSecret []byte
	TokenTTL  int64 // seconds
}

func NewHandler(db *gorm.DB, session *services.SessionStore, sim *services.ThreatSimulator, webhook *services.WebhookService, jwtSecret []byte, tokenTTLSeconds int64) *Handler {
	return &Handler{
		DB:        db,
		Session:   session,
		Simulator: sim,
		Webhook:   webhook,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTLSeconds,
	}
}
