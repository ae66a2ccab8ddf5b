package migration

import (
	"sort"
	"time"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
)

// PhaseStats accumulates named counters for one migration phase.
type PhaseStats struct {
	Phase    string
	started  time.Time
	counters map[string]int
}

func newPhaseStats(phase string) *PhaseStats {
	return &PhaseStats{
		Phase:    phase,
		started:  time.Now(),
		counters: map[string]int{},
	}
}

func (s *PhaseStats) Add(key string, n int) {
	s.counters[key] += n
}

func (s *PhaseStats) Incr(key string) {
	s.counters[key]++
}

func (s *PhaseStats) Get(key string) int {
	return s.counters[key]
}

func (s *PhaseStats) Errors() int {
	return s.counters["errors"]
}

// Log emits the phase summary with counters in stable order.
func (s *PhaseStats) Log(log *logger.Logger) {
	keys := make([]string, 0, len(s.counters))
	for k := range s.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := []interface{}{"phase", s.Phase, "elapsed", time.Since(s.started).Round(time.Second).String()}
	for _, k := range keys {
		kv = append(kv, k, s.counters[k])
	}
	if s.Errors() > 0 {
		log.Warn("phase finished with errors", kv...)
		return
	}
	log.Info("phase complete", kv...)
}

// Report collects stats across every phase of a run.
type Report struct {
	phases []*PhaseStats
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) Phase(name string) *PhaseStats {
	s := newPhaseStats(name)
	r.phases = append(r.phases, s)
	return s
}

func (r *Report) TotalErrors() int {
	total := 0
	for _, s := range r.phases {
		total += s.Errors()
	}
	return total
}

func (r *Report) Log(log *logger.Logger) {
	for _, s := range r.phases {
		s.Log(log)
	}
	log.Info("migration run summary", "phases", len(r.phases), "total_errors", r.TotalErrors())
}
