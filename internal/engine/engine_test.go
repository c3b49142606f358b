package engine

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/terrain"
)

func testConfig(seed string) config.Config {
	c := config.Defaults()
	c.Seed = seed
	c.Width, c.Height = 480, 270
	return c
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testConfig("abc")
	a := New(nil).Generate(cfg)
	b := New(nil).Generate(cfg)
	if !reflect.DeepEqual(a.Heightmap, b.Heightmap) {
		t.Error("heightmaps differ across engines")
	}
	if !reflect.DeepEqual(a.Contours, b.Contours) {
		t.Error("contours differ across engines")
	}
	if !reflect.DeepEqual(a.Zones, b.Zones) {
		t.Error("zones differ across engines")
	}
	if a.GridWidth != 250 || a.GridHeight != 141 {
		t.Errorf("grid %dx%d, want 250x141", a.GridWidth, a.GridHeight)
	}
	if len(a.Contours) != cfg.ContourLevels {
		t.Errorf("got %d contours, want %d", len(a.Contours), cfg.ContourLevels)
	}
}

func TestLevelsChangeReusesHeightmap(t *testing.T) {
	e := New(nil)
	cfg := testConfig("cache")
	first := e.Generate(cfg)

	cfg.ContourLevels = 12
	second := e.Generate(cfg)
	if second.Heightmap != first.Heightmap {
		t.Error("heightmap was rebuilt for a levels-only change")
	}
	if len(second.Contours) != 12 {
		t.Errorf("got %d contours, want 12", len(second.Contours))
	}

	fresh := New(nil).Generate(cfg)
	if !reflect.DeepEqual(second.Contours, fresh.Contours) {
		t.Error("cached heightmap produced different contours than a cold engine")
	}

	s := e.Stats()
	if s.HeightmapHits != 1 || s.HeightmapMisses != 1 || s.ContourMisses != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestScaleChangeInvalidatesBoth(t *testing.T) {
	e := New(nil)
	cfg := testConfig("cache")
	first := e.Generate(cfg)

	cfg.NoiseScale = 0.01
	second := e.Generate(cfg)
	if second.Heightmap == first.Heightmap {
		t.Error("heightmap reused after a scale change")
	}
	if reflect.DeepEqual(second.Contours, first.Contours) {
		t.Error("contours reused after a scale change")
	}
	if s := e.Stats(); s.HeightmapMisses != 2 || s.ContourMisses != 2 {
		t.Errorf("stats = %+v", s)
	}

	// Same config again hits both caches.
	e.Generate(cfg)
	if s := e.Stats(); s.HeightmapHits != 1 || s.ContourHits != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestZoneToggleKeepsTerrain(t *testing.T) {
	e := New(nil)
	cfg := testConfig("toggle")
	cfg.ShowZones = false
	off := e.Generate(cfg)
	if off.Zones != nil || off.Tessellation != nil {
		t.Error("zones computed while hidden")
	}
	cfg.ShowZones = true
	on := e.Generate(cfg)
	if on.Heightmap != off.Heightmap {
		t.Error("zone toggle rebuilt the heightmap")
	}
	if on.Tessellation == nil {
		t.Error("no tessellation with zones shown")
	}
}

func TestGenerateClampsInput(t *testing.T) {
	cfg := testConfig("clamp")
	cfg.Width, cfg.Height = 5, 5
	cfg.Octaves = 0
	cfg.ContourLevels = -3
	out := New(nil).Generate(cfg)
	if out.Config.Width != config.MinDimension || out.Config.Octaves != config.MinOctaves {
		t.Errorf("config not clamped: %+v", out.Config)
	}
	if len(out.Contours) > 1 {
		t.Errorf("got %d contours for one level", len(out.Contours))
	}
}

type memStore struct {
	mu    sync.Mutex
	data  map[string]*terrain.Heightmap
	loads int
}

func (m *memStore) LoadHeightmap(key string) (*terrain.Heightmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	hm, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return hm, nil
}

func (m *memStore) SaveHeightmap(key string, hm *terrain.Heightmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = hm
	return nil
}

func TestStoreBackfillsColdEngine(t *testing.T) {
	store := &memStore{data: map[string]*terrain.Heightmap{}}
	cfg := testConfig("stored")

	warm := New(store).Generate(cfg)
	if len(store.data) != 1 {
		t.Fatalf("store holds %d heightmaps, want 1", len(store.data))
	}

	cold := New(store)
	out := cold.Generate(cfg)
	if out.Heightmap != warm.Heightmap {
		t.Error("cold engine did not reuse the stored heightmap")
	}
	if s := cold.Stats(); s.StoreHits != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestKeyFingerprintDistinct(t *testing.T) {
	a := KeyFor(testConfig("a|b"))
	b := KeyFor(testConfig("a"))
	if a.String() == b.String() {
		t.Errorf("fingerprints collide: %s", a)
	}
	if KeyFor(testConfig("x")).String() != KeyFor(testConfig("x")).String() {
		t.Error("fingerprint unstable")
	}
}

// fakeGen records the configs it was asked to render and can block.
type fakeGen struct {
	mu      sync.Mutex
	seeds   []string
	started chan string
	release chan struct{}
}

func (f *fakeGen) Generate(cfg config.Config) *Output {
	f.mu.Lock()
	f.seeds = append(f.seeds, cfg.Seed)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- cfg.Seed
	}
	if f.release != nil {
		<-f.release
	}
	return &Output{Config: cfg}
}

func (f *fakeGen) rendered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seeds...)
}

func TestSchedulerDebounce(t *testing.T) {
	gen := &fakeGen{}
	done := make(chan *Output, 4)
	s := NewScheduler(gen, 30*time.Millisecond, func(o *Output) { done <- o })
	defer s.Stop()

	for _, seed := range []string{"a", "b", "c", "d"} {
		s.Request(testConfig(seed))
	}

	select {
	case out := <-done:
		if out.Config.Seed != "d" {
			t.Errorf("rendered %q, want the latest request d", out.Config.Seed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no pass delivered")
	}
	time.Sleep(100 * time.Millisecond)
	if got := gen.rendered(); len(got) != 1 {
		t.Errorf("rendered %v, want a single pass", got)
	}
}

func TestSchedulerCoalesces(t *testing.T) {
	gen := &fakeGen{started: make(chan string, 4), release: make(chan struct{})}
	done := make(chan *Output, 4)
	s := NewScheduler(gen, time.Millisecond, func(o *Output) { done <- o })
	defer s.Stop()

	s.Request(testConfig("first"))
	if seed := <-gen.started; seed != "first" {
		t.Fatalf("first pass rendered %q", seed)
	}

	// These come due while "first" is still running.
	s.Request(testConfig("second"))
	time.Sleep(20 * time.Millisecond)
	s.Request(testConfig("third"))
	time.Sleep(20 * time.Millisecond)

	gen.release <- struct{}{}
	if seed := <-gen.started; seed != "third" {
		t.Fatalf("follow-up rendered %q, want third", seed)
	}
	gen.release <- struct{}{}

	for range 2 {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("pass not delivered")
		}
	}
	time.Sleep(50 * time.Millisecond)
	if got := gen.rendered(); !reflect.DeepEqual(got, []string{"first", "third"}) {
		t.Errorf("rendered %v, want [first third]", got)
	}
	if s.Passes() != 2 {
		t.Errorf("passes = %d, want 2", s.Passes())
	}
}

func TestSchedulerStop(t *testing.T) {
	gen := &fakeGen{}
	delivered := make(chan *Output, 1)
	s := NewScheduler(gen, 50*time.Millisecond, func(o *Output) { delivered <- o })
	s.Request(testConfig("never"))
	s.Stop()
	time.Sleep(100 * time.Millisecond)
	if len(delivered) != 0 || len(gen.rendered()) != 0 {
		t.Error("pass ran after Stop")
	}
	s.Request(testConfig("ignored"))
	time.Sleep(100 * time.Millisecond)
	if len(gen.rendered()) != 0 {
		t.Error("request accepted after Stop")
	}
}
