package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/topowall/internal/config"
)

// DefaultDebounce is the quiet period before a requested pass starts.
const DefaultDebounce = 150 * time.Millisecond

// Generator runs a render pass.
type Generator interface {
	Generate(cfg config.Config) *Output
}

// Scheduler debounces render requests and keeps at most one pass in flight.
// Requests that come due while a pass runs collapse into a single follow-up
// pass with the latest configuration.
type Scheduler struct {
	gen      Generator
	debounce time.Duration
	deliver  func(*Output)

	mu       sync.Mutex
	pending  *config.Config
	timer    *time.Timer
	running  bool
	followUp bool
	stopped  bool
	passes   uint64
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler that hands each finished pass to deliver.
// A non-positive debounce uses DefaultDebounce.
func NewScheduler(gen Generator, debounce time.Duration, deliver func(*Output)) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{gen: gen, debounce: debounce, deliver: deliver}
}

// Request asks for a pass with cfg, replacing any configuration still waiting
// and restarting the debounce timer.
func (s *Scheduler) Request(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = &cfg
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// fire starts a pass, or marks a follow-up when one is already running.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped || s.pending == nil {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.followUp = true
		s.mu.Unlock()
		return
	}
	cfg := *s.pending
	s.pending = nil
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(cfg)
}

func (s *Scheduler) run(cfg config.Config) {
	defer s.wg.Done()
	for {
		out := s.gen.Generate(cfg)

		s.mu.Lock()
		s.passes++
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped && s.deliver != nil {
			s.deliver(out)
		}

		s.mu.Lock()
		if s.followUp && s.pending != nil && !s.stopped {
			cfg = *s.pending
			s.pending = nil
			s.followUp = false
			s.mu.Unlock()
			slog.Debug("coalesced render pass", "seed", cfg.Seed)
			continue
		}
		s.followUp = false
		s.running = false
		s.mu.Unlock()
		return
	}
}

// Passes reports how many passes have completed.
func (s *Scheduler) Passes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// Stop cancels any waiting request and blocks until the pass in flight ends.
// No results are delivered after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
