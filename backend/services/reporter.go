package services

import (
	"fmt"
	"time"

	"threatscope-web-gui/backend/system"
)

// DailyReporter generates and sends a daily threat summary
type DailyReporter struct {
	session  *SessionStore
	webhook  *WebhookService
	stopChan chan struct{}
}

func NewDailyReporter(session *SessionStore, webhook *WebhookService) *DailyReporter {
	return &DailyReporter{
		session:  session,
		webhook:  webhook,
		stopChan: make(chan struct{}),
	}
}

// Start schedules the daily report at local midnight
func (r *DailyReporter) Start() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			duration := next.Sub(now)

			system.Info("Next daily report scheduled in %v", duration)
			select {
			case <-time.After(duration):
				r.SendReport()
				// Avoid double firing if execution is fast
				time.Sleep(60 * time.Second)
			case <-r.stopChan:
				return
			}
		}
	}()
}

// Stop cancels the report schedule
func (r *DailyReporter) Stop() {
	close(r.stopChan)
}

// SendReport generates and sends the report from the session's records
func (r *DailyReporter) SendReport() {
	if !r.webhook.IsEnabled() {
		return
	}

	system.Info("Generating daily threat report...")
	now := time.Now()
	records := r.session.Records()

	stats := CalculateThreatStats(records)

	// Last 24 hours only for the arrival count
	var last24h int
	for _, t := range records {
		if now.Sub(t.Timestamp) <= 24*time.Hour {
			last24h++
		}
	}

	topAttacker := "None"
	if top := TopAttackers(records, 1); len(top) > 0 {
		topAttacker = fmt.Sprintf("%s (%d hits)", top[0].IP, top[0].Hits)
	}

	topPattern := "None"
	if patterns := AttackPatterns(records, 1); len(patterns) > 0 {
		topPattern = fmt.Sprintf("%s on port %d (%d events)",
			patterns[0].Type, patterns[0].Port, patterns[0].Count)
	}

	title := fmt.Sprintf("📊 Daily Threat Report (%s)", now.Add(-24*time.Hour).Format("2006-01-02"))

	desc := fmt.Sprintf("**Threat Summary**\n"+
		"• Total Records: `%d`\n"+
		"• New in last 24h: `%d`\n"+
		"• Critical: `%d` | High: `%d`\n\n"+
		"**Response Summary**\n"+
		"• Blocked: `%d`\n"+
		"• Investigating: `%d`\n"+
		"• Dismissed: `%d`\n\n"+
		"**Highlights**\n"+
		"• Top Attacker: `%s`\n"+
		"• Top Pattern: `%s`",
		stats.Total, last24h,
		stats.BySeverity["Critical"], stats.BySeverity["High"],
		stats.Blocked, stats.Investigating, stats.Dismissed,
		topAttacker, topPattern)

	r.webhook.SendSystemAlert(title, desc, ColorBlue)
}
