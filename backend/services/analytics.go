package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"threatscope-web-gui/backend/models"
)

// FilterThreats returns the ordered subset of records matching every active
// criterion. Inactive (zero-valued) criteria are skipped, so an empty
// FilterCriteria returns the input unchanged. The evaluation time is an
// explicit parameter so recency windowing stays deterministic under test.
// The input slice is never mutated.
func FilterThreats(records []models.ThreatRecord, criteria models.FilterCriteria, now time.Time) []models.ThreatRecord {
	matched := make([]models.ThreatRecord, 0, len(records))

	search := strings.ToLower(criteria.Search)
	source := strings.ToLower(criteria.Source)

	for _, t := range records {
		if search != "" {
			ok := strings.Contains(strings.ToLower(t.SourceIP), search) ||
				strings.Contains(strings.ToLower(t.TargetIP), search) ||
				strings.Contains(strings.ToLower(t.ThreatType), search) ||
				strings.Contains(strings.ToLower(t.Notes), search)
			if !ok {
				continue
			}
		}

		if len(criteria.ThreatTypes) > 0 {
			ok := false
			for _, tt := range criteria.ThreatTypes {
				if t.ThreatType == tt {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		if criteria.Severity != "" && t.Severity != criteria.Severity {
			continue
		}

		if source != "" {
			ok := strings.Contains(strings.ToLower(t.SourceIP), source) ||
				strings.Contains(strings.ToLower(t.SourceLabel), source)
			if !ok {
				continue
			}
		}

		if criteria.Window > 0 && now.Sub(t.Timestamp) > criteria.Window {
			continue
		}

		matched = append(matched, t)
	}

	return matched
}

// TimeRangeWindow maps the UI's time-range values to a duration. Unknown
// values (including "all" and empty) mean no windowing, matching the
// reference fallback behaviour.
func TimeRangeWindow(timeRange string) time.Duration {
	switch timeRange {
	case "1min", "1m":
		return time.Minute
	case "5min", "5m":
		return 5 * time.Minute
	case "1hour", "1h":
		return time.Hour
	case "24hours", "24h":
		return 24 * time.Hour
	default:
		return 0
	}
}

// PaginateThreats slices an ordered record sequence into a 1-indexed page.
// A non-positive pageSize is a caller error and is rejected outright. An
// out-of-range page is clamped into [1, totalPages] rather than producing an
// undefined slice; the clamped value is echoed back as CurrentPage.
func PaginateThreats(records []models.ThreatRecord, page, pageSize int) (models.PageResult, error) {
	if pageSize <= 0 {
		return models.PageResult{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageRecords := make([]models.ThreatRecord, end-start)
	copy(pageRecords, records[start:end])

	return models.PageResult{
		Threats:     pageRecords,
		TotalPages:  totalPages,
		TotalCount:  total,
		CurrentPage: page,
		HasNext:     end < total,
		HasPrev:     page > 1,
	}, nil
}

// StatusCounts tallies records per workflow status.
type StatusCounts struct {
	Total         int `json:"total"`
	New           int `json:"new"`
	Investigating int `json:"investigating"`
	Blocked       int `json:"blocked"`
	Dismissed     int `json:"dismissed"`
}

// ComputeStatusCounts counts records per status. Total over an empty set is
// zero across the board, never an error.
func ComputeStatusCounts(records []models.ThreatRecord) StatusCounts {
	counts := StatusCounts{Total: len(records)}
	for _, t := range records {
		switch t.Status {
		case models.StatusNew:
			counts.New++
		case models.StatusInvestigating:
			counts.Investigating++
		case models.StatusBlocked:
			counts.Blocked++
		case models.StatusDismissed:
			counts.Dismissed++
		}
	}
	return counts
}

// ComputeSeverityCounts counts records per severity. Every severity in the
// vocabulary is present in the result, zero or not.
func ComputeSeverityCounts(records []models.ThreatRecord) map[string]int {
	counts := make(map[string]int, len(models.SeverityLevels))
	for _, s := range models.SeverityLevels {
		counts[s] = 0
	}
	for _, t := range records {
		counts[t.Severity]++
	}
	return counts
}

// ComputeTypeCounts counts records per threat type. The full 10-type
// vocabulary is always represented, not just the types seen.
func ComputeTypeCounts(records []models.ThreatRecord) map[string]int {
	counts := make(map[string]int, len(models.ThreatTypes))
	for _, tt := range models.ThreatTypes {
		counts[tt] = 0
	}
	for _, t := range records {
		if _, known := counts[t.ThreatType]; known {
			counts[t.ThreatType]++
		}
	}
	return counts
}

// CalculateThreatStats computes the combined rollup the overview page renders.
func CalculateThreatStats(records []models.ThreatRecord) models.ThreatStats {
	status := ComputeStatusCounts(records)
	return models.ThreatStats{
		Total:         status.Total,
		New:           status.New,
		Investigating: status.Investigating,
		Blocked:       status.Blocked,
		Dismissed:     status.Dismissed,
		BySeverity:    ComputeSeverityCounts(records),
		ByType:        ComputeTypeCounts(records),
	}
}

// TopAttackers ranks source addresses by summed hits (the weighted total, not
// the record count), descending. Ties keep first-encountered input order.
func TopAttackers(records []models.ThreatRecord, limit int) []models.TopAttacker {
	sums := make(map[string]int64)
	order := make([]string, 0)

	for _, t := range records {
		if _, seen := sums[t.SourceIP]; !seen {
			order = append(order, t.SourceIP)
		}
		sums[t.SourceIP] += int64(t.Hits)
	}

	attackers := make([]models.TopAttacker, 0, len(order))
	for _, ip := range order {
		attackers = append(attackers, models.TopAttacker{IP: ip, Hits: sums[ip]})
	}

	sort.SliceStable(attackers, func(i, j int) bool {
		return attackers[i].Hits > attackers[j].Hits
	})

	if limit > 0 && limit < len(attackers) {
		attackers = attackers[:limit]
	}
	return attackers
}

// AttackPatterns ranks (threat type, port) pairings by occurrence count,
// unweighted, descending. Ties keep first-encountered input order.
func AttackPatterns(records []models.ThreatRecord, limit int) []models.AttackPattern {
	type key struct {
		threatType string
		port       int
	}
	counts := make(map[key]int)
	order := make([]key, 0)

	for _, t := range records {
		k := key{t.ThreatType, t.Port}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	patterns := make([]models.AttackPattern, 0, len(order))
	for _, k := range order {
		patterns = append(patterns, models.AttackPattern{Type: k.threatType, Port: k.port, Count: counts[k]})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})

	if limit > 0 && limit < len(patterns) {
		patterns = patterns[:limit]
	}
	return patterns
}
