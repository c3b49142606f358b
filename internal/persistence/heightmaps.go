package persistence

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/topowall/internal/terrain"
)

var (
	blobEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	blobDecoder, _ = zstd.NewReader(nil)
)

type heightmapRow struct {
	Width  int    `db:"width"`
	Height int    `db:"height"`
	Data   []byte `db:"data"`
}

// SaveHeightmap stores hm under key, replacing any previous entry.
func (db *DB) SaveHeightmap(key string, hm *terrain.Heightmap) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO heightmaps (key, width, height, data, stored_at) VALUES (?, ?, ?, ?, ?)",
		key, hm.Width, hm.Height, packValues(hm.Values), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save heightmap %s: %w", key, err)
	}
	return nil
}

// LoadHeightmap returns the heightmap stored under key.
func (db *DB) LoadHeightmap(key string) (*terrain.Heightmap, error) {
	var row heightmapRow
	err := db.conn.Get(&row, "SELECT width, height, data FROM heightmaps WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("heightmap %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load heightmap %s: %w", key, err)
	}
	values, err := unpackValues(row.Data)
	if err != nil {
		return nil, fmt.Errorf("load heightmap %s: %w", key, err)
	}
	if len(values) != row.Width*row.Height {
		return nil, fmt.Errorf("load heightmap %s: %d values for %dx%d", key, len(values), row.Width, row.Height)
	}
	return &terrain.Heightmap{Width: row.Width, Height: row.Height, Values: values}, nil
}

// PruneHeightmaps keeps only the keep most recently stored heightmaps and
// reports how many were removed.
func (db *DB) PruneHeightmaps(keep int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM heightmaps WHERE key NOT IN
		(SELECT key FROM heightmaps ORDER BY stored_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune heightmaps: %w", err)
	}
	return res.RowsAffected()
}

// packValues writes values as little-endian float64 bits, zstd-compressed.
func packValues(values []float64) []byte {
	raw := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}
	return blobEncoder.EncodeAll(raw, nil)
}

func unpackValues(blob []byte) ([]float64, error) {
	raw, err := blobDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("blob length %d not a multiple of 8", len(raw))
	}
	values := make([]float64, len(raw)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return values, nil
}
