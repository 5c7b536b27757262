package models

import (
	"fmt"
	"time"
)

// Fixed vocabularies for threat classification. The generator draws from these
// and the aggregator reports over the full set, so order matters for display.
var (
	ThreatTypes = []string{
		"DDoS",
		"Port Scan",
		"Brute Force",
		"SQLi",
		"XSS",
		"Malware",
		"Phishing",
		"Vulnerability Scan",
		"Data Exfiltration",
		"Buffer Overflow",
	}
	SeverityLevels = []string{"Critical", "High", "Medium", "Low"}
	Statuses       = []string{StatusNew, StatusInvestigating, StatusBlocked, StatusDismissed}
	Protocols      = []string{"TCP", "UDP", "HTTP", "HTTPS", "SSH", "FTP", "SMTP"}
	SourceLabels   = []string{
		"unknown-isp",
		"malicious-bot",
		"compromised-host",
		"external-attacker",
		"botnet-member",
	}
)

const (
	StatusNew           = "New"
	StatusInvestigating = "Investigating"
	StatusBlocked       = "Blocked"
	StatusDismissed     = "Dismissed"
)

// ThreatRecord is one observed or simulated security event. Records are
// immutable by convention except for Status, which only moves forward via
// explicit operator action.
type ThreatRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	SourceIP    string    `json:"source_ip"`
	SourceLabel string    `json:"source_label"`
	TargetIP    string    `json:"target_ip"`
	ThreatType  string    `json:"threat_type"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Protocol    string    `json:"protocol"`
	Port        int       `json:"port"`
	Hits        int       `json:"hits"`
	Notes       string    `json:"notes"`
	Pattern     string    `json:"pattern"`
}

// FilterCriteria describes a compound predicate over threat records. Every
// dimension is independently optional: the zero value means "no constraint",
// so there is no "all" sentinel to special-case.
type FilterCriteria struct {
	Search      string        `json:"search"`       // substring over source/target IP, type, notes
	ThreatTypes []string      `json:"threat_types"` // allow-list; empty = any
	Severity    string        `json:"severity"`     // exact match; empty = any
	Source      string        `json:"source"`       // substring over source IP/label
	Window      time.Duration `json:"window"`       // max record age; 0 = any
}

// IsZero reports whether no filter dimension is active.
func (f FilterCriteria) IsZero() bool {
	return f.Search == "" && len(f.ThreatTypes) == 0 && f.Severity == "" &&
		f.Source == "" && f.Window == 0
}

// PageResult is one page of an ordered record sequence plus navigation
// metadata. Recomputed on every paginate call, never cached.
type PageResult struct {
	Threats     []ThreatRecord `json:"threats"`
	TotalPages  int            `json:"total_pages"`
	TotalCount  int            `json:"total_count"`
	CurrentPage int            `json:"current_page"`
	HasNext     bool           `json:"has_next"`
	HasPrev     bool           `json:"has_prev"`
}

// ThreatStats is the rollup consumed by the overview page.
type ThreatStats struct {
	Total         int            `json:"total"`
	New           int            `json:"new"`
	Investigating int            `json:"investigating"`
	Blocked       int            `json:"blocked"`
	Dismissed     int            `json:"dismissed"`
	BySeverity    map[string]int `json:"by_severity"`
	ByType        map[string]int `json:"by_type"`
}

// TopAttacker ranks a source address by summed hits, not record count.
type TopAttacker struct {
	IP   string `json:"ip"`
	Hits int64  `json:"hits"`
}

// AttackPattern is the frequency of a (threat type, port) pairing.
type AttackPattern struct {
	Type  string `json:"type"`
	Port  int    `json:"port"`
	Count int    `json:"count"`
}

func contains(vocab []string, v string) bool {
	for _, s := range vocab {
		if s == v {
			return true
		}
	}
	return false
}

// Validate fails fast on malformed records so a bad seed file or a buggy
// producer surfaces immediately instead of propagating zero values.
func (t *ThreatRecord) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("threat record missing id")
	case t.Timestamp.IsZero():
		return fmt.Errorf("threat record %s: missing timestamp", t.ID)
	case t.SourceIP == "":
		return fmt.Errorf("threat record %s: missing source_ip", t.ID)
	case t.TargetIP == "":
		return fmt.Errorf("threat record %s: missing target_ip", t.ID)
	case !contains(ThreatTypes, t.ThreatType):
		return fmt.Errorf("threat record %s: unknown threat_type %q", t.ID, t.ThreatType)
	case !contains(SeverityLevels, t.Severity):
		return fmt.Errorf("threat record %s: unknown severity %q", t.ID, t.Severity)
	case !contains(Statuses, t.Status):
		return fmt.Errorf("threat record %s: unknown status %q", t.ID, t.Status)
	case !contains(Protocols, t.Protocol):
		return fmt.Errorf("threat record %s: unknown protocol %q", t.ID, t.Protocol)
	case t.Port < 1 || t.Port > 65535:
		return fmt.Errorf("threat record %s: port %d out of range", t.ID, t.Port)
	case t.Hits < 1:
		return fmt.Errorf("threat record %s: hits must be >= 1, got %d", t.ID, t.Hits)
	}
	return nil
}

// CanTransitionTo enforces the status lifecycle: New may move to any of the
// handled states, the handled states may move freely between each other, and
// nothing ever reverts to New.
func CanTransitionTo(from, to string) bool {
	if !contains(Statuses, from) || !contains(Statuses, to) {
		return false
	}
	if to == StatusNew {
		return false
	}
	return true
}
