package services

import (
	"fmt"
	"testing"
	"time"

	"threatscope-web-gui/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func makeRecord(id, sourceIP, threatType, severity, status string, port, hits int, age time.Duration) models.ThreatRecord {
	return models.ThreatRecord{
		ID:          id,
		Timestamp:   testNow.Add(-age),
		SourceIP:    sourceIP,
		SourceLabel: "unknown-isp",
		TargetIP:    "10.0.0.5",
		ThreatType:  threatType,
		Severity:    severity,
		Status:      status,
		Protocol:    "TCP",
		Port:        port,
		Hits:        hits,
		Notes:       fmt.Sprintf("%s detected from %s", threatType, sourceIP),
		Pattern:     "pattern detected",
	}
}

func sampleRecords() []models.ThreatRecord {
	return []models.ThreatRecord{
		makeRecord("t1", "1.1.1.1", "DDoS", "Critical", "New", 80, 3, 30*time.Second),
		makeRecord("t2", "2.2.2.2", "Port Scan", "High", "Investigating", 3389, 1, 2*time.Minute),
		makeRecord("t3", "1.1.1.1", "DDoS", "Medium", "Blocked", 80, 5, 30*time.Minute),
		makeRecord("t4", "3.3.3.3", "SQLi", "Critical", "New", 443, 10, 2*time.Hour),
		makeRecord("t5", "1.1.1.1", "DDoS", "Low", "Dismissed", 443, 2, 48*time.Hour),
	}
}

func ids(records []models.ThreatRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterThreats_EmptyCriteriaReturnsAllInOrder(t *testing.T) {
	records := sampleRecords()

	got := FilterThreats(records, models.FilterCriteria{}, testNow)

	assert.Equal(t, ids(records), ids(got))
}

func TestFilterThreats_NeverMutatesInput(t *testing.T) {
	records := sampleRecords()
	original := sampleRecords()

	_ = FilterThreats(records, models.FilterCriteria{Severity: "Critical", Search: "ddos"}, testNow)

	assert.Equal(t, original, records)
}

func TestFilterThreats_Rules(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name     string
		criteria models.FilterCriteria
		want     []string
	}{
		{
			name:     "search matches threat type case-insensitively",
			criteria: models.FilterCriteria{Search: "ddos"},
			want:     []string{"t1", "t3", "t5"},
		},
		{
			name:     "search matches source ip",
			criteria: models.FilterCriteria{Search: "2.2.2.2"},
			want:     []string{"t2"},
		},
		{
			name:     "search matches target ip",
			criteria: models.FilterCriteria{Search: "10.0.0.5"},
			want:     []string{"t1", "t2", "t3", "t4", "t5"},
		},
		{
			name:     "search matches notes",
			criteria: models.FilterCriteria{Search: "detected from 3.3.3.3"},
			want:     []string{"t4"},
		},
		{
			name:     "type allow-list",
			criteria: models.FilterCriteria{ThreatTypes: []string{"Port Scan", "SQLi"}},
			want:     []string{"t2", "t4"},
		},
		{
			name:     "severity exact match",
			criteria: models.FilterCriteria{Severity: "Critical"},
			want:     []string{"t1", "t4"},
		},
		{
			name:     "source matches label substring",
			criteria: models.FilterCriteria{Source: "unknown"},
			want:     []string{"t1", "t2", "t3", "t4", "t5"},
		},
		{
			name:     "source matches ip substring",
			criteria: models.FilterCriteria{Source: "3.3"},
			want:     []string{"t4"},
		},
		{
			name:     "window keeps only recent records",
			criteria: models.FilterCriteria{Window: time.Hour},
			want:     []string{"t1", "t2", "t3"},
		},
		{
			name:     "all rules AND together",
			criteria: models.FilterCriteria{Search: "ddos", Severity: "Critical", Window: time.Minute},
			want:     []string{"t1"},
		},
		{
			name:     "no match returns empty not error",
			criteria: models.FilterCriteria{Search: "nonexistent"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterThreats(records, tt.criteria, testNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterThreats_ComposesAssociatively(t *testing.T) {
	records := sampleRecords()

	combined := FilterThreats(records, models.FilterCriteria{Search: "ddos", Severity: "Critical"}, testNow)
	chained := FilterThreats(
		FilterThreats(records, models.FilterCriteria{Search: "ddos"}, testNow),
		models.FilterCriteria{Severity: "Critical"}, testNow)

	assert.Equal(t, chained, combined)
}

func TestTimeRangeWindow(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1min", time.Minute},
		{"1m", time.Minute},
		{"5min", 5 * time.Minute},
		{"5m", 5 * time.Minute},
		{"1hour", time.Hour},
		{"1h", time.Hour},
		{"24hours", 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"all", 0},
		{"", 0},
		{"fortnight", 0}, // unknown values mean no windowing
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeRangeWindow(tt.in), "range %q", tt.in)
	}
}

func TestPaginateThreats_ReconstructsInput(t *testing.T) {
	records := sampleRecords()

	for _, pageSize := range []int{1, 2, 3, 5, 10} {
		first, err := PaginateThreats(records, 1, pageSize)
		require.NoError(t, err)

		var rebuilt []models.ThreatRecord
		for page := 1; page <= first.TotalPages; page++ {
			result, err := PaginateThreats(records, page, pageSize)
			require.NoError(t, err)
			rebuilt = append(rebuilt, result.Threats...)
		}

		assert.Equal(t, records, rebuilt, "pageSize %d", pageSize)
	}
}

func TestPaginateThreats_Metadata(t *testing.T) {
	records := sampleRecords()

	result, err := PaginateThreats(records, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 5, result.TotalCount)
	assert.Equal(t, 2, result.CurrentPage)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
	assert.Equal(t, []string{"t3", "t4"}, ids(result.Threats))
}

func TestPaginateThreats_EmptyInput(t *testing.T) {
	result, err := PaginateThreats(nil, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Threats)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestPaginateThreats_ClampsOutOfRangePages(t *testing.T) {
	records := sampleRecords()

	beyond, err := PaginateThreats(records, 99, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, beyond.CurrentPage)
	assert.Equal(t, []string{"t5"}, ids(beyond.Threats))
	assert.False(t, beyond.HasNext)

	below, err := PaginateThreats(records, -1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, below.CurrentPage)
	assert.Equal(t, []string{"t1", "t2"}, ids(below.Threats))
	assert.False(t, below.HasPrev)
}

func TestPaginateThreats_RejectsNonPositivePageSize(t *testing.T) {
	_, err := PaginateThreats(sampleRecords(), 1, 0)
	assert.Error(t, err)

	_, err = PaginateThreats(sampleRecords(), 1, -5)
	assert.Error(t, err)
}

func TestComputeStatusCounts_SumsToTotal(t *testing.T) {
	records := sampleRecords()

	counts := ComputeStatusCounts(records)

	assert.Equal(t, len(records), counts.Total)
	assert.Equal(t, counts.Total, counts.New+counts.Investigating+counts.Blocked+counts.Dismissed)
	assert.Equal(t, 2, counts.New)
	assert.Equal(t, 1, counts.Investigating)
	assert.Equal(t, 1, counts.Blocked)
	assert.Equal(t, 1, counts.Dismissed)
}

func TestComputeSeverityCounts_SumsToTotalWithZeros(t *testing.T) {
	records := sampleRecords()

	counts := ComputeSeverityCounts(records)

	total := 0
	for _, sev := range models.SeverityLevels {
		_, present := counts[sev]
		assert.True(t, present, "severity %s missing from counts", sev)
		total += counts[sev]
	}
	assert.Equal(t, len(records), total)
}

func TestComputeTypeCounts_FullVocabularyRepresented(t *testing.T) {
	counts := ComputeTypeCounts(sampleRecords())

	assert.Len(t, counts, len(models.ThreatTypes))
	assert.Equal(t, 3, counts["DDoS"])
	assert.Equal(t, 0, counts["Phishing"])
	assert.Equal(t, 0, counts["Malware"])
}

func TestComputeTypeCounts_EmptyInput(t *testing.T) {
	counts := ComputeTypeCounts(nil)

	assert.Len(t, counts, len(models.ThreatTypes))
	for tt, n := range counts {
		assert.Zero(t, n, "type %s", tt)
	}
}

func TestTopAttackers_RanksByWeightedHits(t *testing.T) {
	records := []models.ThreatRecord{
		makeRecord("a1", "1.1.1.1", "DDoS", "High", "New", 80, 3, time.Minute),
		makeRecord("a2", "2.2.2.2", "DDoS", "High", "New", 80, 1, time.Minute),
		makeRecord("a3", "1.1.1.1", "DDoS", "High", "New", 80, 5, time.Minute),
		makeRecord("a4", "1.1.1.1", "DDoS", "High", "New", 80, 2, time.Minute),
	}

	top := TopAttackers(records, 5)

	require.Len(t, top, 2)
	assert.Equal(t, models.TopAttacker{IP: "1.1.1.1", Hits: 10}, top[0])
	assert.Equal(t, models.TopAttacker{IP: "2.2.2.2", Hits: 1}, top[1])
}

func TestTopAttackers_TiesKeepInputOrder(t *testing.T) {
	records := []models.ThreatRecord{
		makeRecord("a1", "9.9.9.9", "DDoS", "High", "New", 80, 7, time.Minute),
		makeRecord("a2", "8.8.8.8", "DDoS", "High", "New", 80, 7, time.Minute),
	}

	top := TopAttackers(records, 5)

	require.Len(t, top, 2)
	assert.Equal(t, "9.9.9.9", top[0].IP)
	assert.Equal(t, "8.8.8.8", top[1].IP)
}

func TestTopAttackers_LimitAndEmpty(t *testing.T) {
	assert.Empty(t, TopAttackers(nil, 5))

	top := TopAttackers(sampleRecords(), 1)
	require.Len(t, top, 1)
	assert.Equal(t, "1.1.1.1", top[0].IP)
}

func TestAttackPatterns_CountsUnweighted(t *testing.T) {
	records := []models.ThreatRecord{
		makeRecord("p1", "1.1.1.1", "DDoS", "High", "New", 80, 5000, time.Minute),
		makeRecord("p2", "2.2.2.2", "DDoS", "High", "New", 80, 1, time.Minute),
		makeRecord("p3", "3.3.3.3", "DDoS", "High", "New", 443, 9999, time.Minute),
	}

	patterns := AttackPatterns(records, 10)

	require.Len(t, patterns, 2)
	assert.Equal(t, models.AttackPattern{Type: "DDoS", Port: 80, Count: 2}, patterns[0])
	assert.Equal(t, models.AttackPattern{Type: "DDoS", Port: 443, Count: 1}, patterns[1])
}

func TestAttackPatterns_Limit(t *testing.T) {
	var records []models.ThreatRecord
	for i := 0; i < 15; i++ {
		records = append(records, makeRecord(
			fmt.Sprintf("p%d", i), "1.1.1.1", "Port Scan", "High", "New", 1000+i, 1, time.Minute))
	}

	patterns := AttackPatterns(records, 10)

	assert.Len(t, patterns, 10)
}

func TestFilterAndAggregate_CriticalScenario(t *testing.T) {
	// Seed of 10 records, 6 Critical: filtering by severity keeps exactly
	// those 6 in order, and the severity rollup of the result shows zeros
	// for the other levels.
	var seed []models.ThreatRecord
	for i := 0; i < 10; i++ {
		seed = append(seed, makeRecord(
			fmt.Sprintf("s%d", i), "7.7.7.7", "Malware", "Low", "New", 80, 1, time.Minute))
	}
	for _, i := range []int{0, 2, 3, 5, 7, 9} {
		seed[i].Severity = "Critical"
	}

	filtered := FilterThreats(seed, models.FilterCriteria{Severity: "Critical"}, testNow)

	require.Len(t, filtered, 6)
	want := []string{"s0", "s2", "s3", "s5", "s7", "s9"}
	assert.Equal(t, want, ids(filtered))

	counts := ComputeSeverityCounts(filtered)
	assert.Equal(t, 6, counts["Critical"])
	assert.Equal(t, 0, counts["High"])
	assert.Equal(t, 0, counts["Medium"])
	assert.Equal(t, 0, counts["Low"])
}
