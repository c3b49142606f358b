package persistence

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/topowall/internal/terrain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "topowall.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRenderHistory(t *testing.T) {
	db := openTestDB(t)

	for i, seed := range []string{"a", "b", "c"} {
		r := &Render{Seed: seed, Width: 800, Height: 600, Permalink: "link-" + seed, CreatedAt: int64(100 + i)}
		if err := db.RecordRender(r); err != nil {
			t.Fatalf("RecordRender: %v", err)
		}
		if r.ID == "" {
			t.Fatal("RecordRender did not assign an ID")
		}
	}

	recent, err := db.RecentRenders(2)
	if err != nil {
		t.Fatalf("RecentRenders: %v", err)
	}
	if len(recent) != 2 || recent[0].Seed != "c" || recent[1].Seed != "b" {
		t.Fatalf("recent = %+v, want c then b", recent)
	}

	got, err := db.GetRender(recent[0].ID)
	if err != nil {
		t.Fatalf("GetRender: %v", err)
	}
	if !reflect.DeepEqual(got, recent[0]) {
		t.Errorf("GetRender = %+v, want %+v", got, recent[0])
	}
	if _, err := db.GetRender("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRender(missing) err = %v, want ErrNotFound", err)
	}

	n, err := db.CountRenders()
	if err != nil || n != 3 {
		t.Errorf("CountRenders = %d, %v", n, err)
	}

	last, err := db.GetMeta(MetaLastConfig)
	if err != nil || last != "link-c" {
		t.Errorf("last config = %q, %v", last, err)
	}
}

func TestMetaMissing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := db.SaveMeta("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, _ := db.GetMeta("k"); v != "v2" {
		t.Errorf("meta = %q, want v2", v)
	}
}

func TestHeightmapRoundTrip(t *testing.T) {
	db := openTestDB(t)
	hm := terrain.Synthesize(terrain.Params{
		GridWidth: 40, GridHeight: 25, Seed: "store",
		Scale: 0.05, Octaves: 3, Persistence: 0.5, Lacunarity: 2,
	})
	if err := db.SaveHeightmap("k1", hm); err != nil {
		t.Fatalf("SaveHeightmap: %v", err)
	}
	got, err := db.LoadHeightmap("k1")
	if err != nil {
		t.Fatalf("LoadHeightmap: %v", err)
	}
	if !reflect.DeepEqual(got, hm) {
		t.Error("heightmap changed through storage")
	}
	if _, err := db.LoadHeightmap("k2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPruneHeightmaps(t *testing.T) {
	db := openTestDB(t)
	hm := &terrain.Heightmap{Width: 2, Height: 2, Values: []float64{1, 2, 3, 4}}
	for _, k := range []string{"a", "b", "c"} {
		if err := db.SaveHeightmap(k, hm); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := db.PruneHeightmaps(1)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}
	if _, err := db.LoadHeightmap("c"); err != nil {
		t.Errorf("newest heightmap pruned: %v", err)
	}
}

func TestUnpackRejectsGarbage(t *testing.T) {
	if _, err := unpackValues([]byte("not zstd")); err == nil {
		t.Error("garbage blob accepted")
	}
}
