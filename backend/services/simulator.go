package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"threatscope-web-gui/backend/models"
	"threatscope-web-gui/backend/system"
)

// DefaultSimulationInterval is the tick used when the caller passes a
// non-positive interval.
const DefaultSimulationInterval = 5 * time.Second

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ThreatSimulator fabricates threat records on a fixed interval to stand in
// for a live feed. Each instance owns its own timer state; there is no
// process-wide simulation handle, so the session layer may run one per
// session if it ever needs to.
type ThreatSimulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	interval time.Duration
}

// NewThreatSimulator creates a stopped simulator.
func NewThreatSimulator() *ThreatSimulator {
	return &ThreatSimulator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins firing onRecord every interval until Stop is called. Calling
// Start while running replaces the previous run; at most one ticker is ever
// active per simulator.
func (s *ThreatSimulator) Start(interval time.Duration, onRecord func(models.ThreatRecord)) {
	if interval <= 0 {
		interval = DefaultSimulationInterval
	}

	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	stop := make(chan struct{})
	s.stopChan = stop
	s.running = true
	s.interval = interval

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		system.Info("Threat simulation started (interval: %v)", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// Re-check stop so a tick racing Stop() never delivers
				// a record after Stop has returned.
				select {
				case <-stop:
					return
				default:
				}
				onRecord(s.generate())
			case <-stop:
				system.Info("Threat simulation stopped")
				return
			}
		}
	}()
}

// Stop cancels the current run and waits for the worker to exit, so no
// callback fires after Stop returns. Safe to call when not running.
func (s *ThreatSimulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// IsRunning reports whether the simulator is currently firing.
func (s *ThreatSimulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the tick of the current (or last) run.
func (s *ThreatSimulator) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval == 0 {
		return DefaultSimulationInterval
	}
	return s.interval
}

// Generate returns a single fabricated record outside of any timer run.
// Handy for tests and for seeding demos.
func (s *ThreatSimulator) Generate() models.ThreatRecord {
	return s.generate()
}

func (s *ThreatSimulator) generate() models.ThreatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	threatType := pick(s.rng, models.ThreatTypes)

	return models.ThreatRecord{
		ID:          s.newID(),
		Timestamp:   time.Now(),
		SourceIP:    s.randomIP(),
		SourceLabel: pick(s.rng, models.SourceLabels),
		TargetIP:    fmt.Sprintf("10.0.0.%d", s.rng.Intn(255)),
		ThreatType:  threatType,
		Severity:    pick(s.rng, models.SeverityLevels),
		Status:      models.StatusNew,
		Protocol:    pick(s.rng, models.Protocols),
		Port:        s.rng.Intn(65535) + 1,
		Hits:        s.rng.Intn(5000) + 1,
		Notes:       fmt.Sprintf("%s detected from %s", threatType, s.randomIP()),
		Pattern:     fmt.Sprintf("%s pattern detected", strings.ToLower(threatType)),
	}
}

// newID builds a time-prefixed identifier with a random base36 suffix.
// The millisecond prefix plus nine random characters makes in-session
// collisions practically impossible.
func (s *ThreatSimulator) newID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[s.rng.Intn(len(base36))]
	}
	return fmt.Sprintf("t%d_%s", time.Now().UnixMilli(), suffix)
}

// randomIP produces a dotted-quad string. No validity checks; consumers must
// treat source addresses as opaque strings.
func (s *ThreatSimulator) randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", s.rng.Intn(256), s.rng.Intn(256), s.rng.Intn(256), s.rng.Intn(256))
}

func pick(rng *rand.Rand, vocab []string) string {
	return vocab[rng.Intn(len(vocab))]
}
