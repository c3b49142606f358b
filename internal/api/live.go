package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/render"
)

const (
	liveWriteWait  = 10 * time.Second
	livePreviewMax = 0.5
)

// LiveFrame is the text message sent ahead of each PNG frame.
type LiveFrame struct {
	Permalink string        `json:"permalink"`
	Seed      string        `json:"seed"`
	Contours  int           `json:"contours"`
	Zones     int           `json:"zones"`
	Elapsed   time.Duration `json:"elapsedNs"`
	Bytes     int           `json:"bytes"`
}

// liveSession streams debounced previews to one websocket client. Each
// incoming text message is a JSON configuration overlaid on the previous one.
type liveSession struct {
	conn  *websocket.Conn
	wmu   sync.Mutex
	scale float64
	sched *engine.Scheduler
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if atomic.AddInt32(&s.liveConns, 1) > maxLiveConns {
		atomic.AddInt32(&s.liveConns, -1)
		http.Error(w, "too many live sessions", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.liveConns, -1)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("live upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	ls := &liveSession{conn: conn, scale: livePreviewMax}
	ls.sched = engine.NewScheduler(s.Engine, s.Debounce, ls.deliver)
	defer ls.sched.Stop()

	cfg := config.Defaults()
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		next := cfg
		if err := json.Unmarshal(msg, &next); err != nil {
			ls.closeWith(websocket.CloseUnsupportedData, "bad config")
			return
		}
		if next.Seed == "" {
			next.Seed = entropy.RandomSeed()
		}
		cfg = next.Clamped()
		ls.sched.Request(cfg)
	}
}

func (ls *liveSession) deliver(out *engine.Output) {
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.Draw(out, render.Options{Scale: ls.scale})); err != nil {
		slog.Error("live png encode failed", "error", err)
		return
	}
	frame, _ := json.Marshal(LiveFrame{
		Permalink: config.Encode(out.Config),
		Seed:      out.Config.Seed,
		Contours:  len(out.Contours),
		Zones:     len(out.Zones),
		Elapsed:   out.Elapsed,
		Bytes:     buf.Len(),
	})

	ls.wmu.Lock()
	defer ls.wmu.Unlock()
	ls.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := ls.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return
	}
	ls.conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

func (ls *liveSession) closeWith(code int, reason string) {
	ls.wmu.Lock()
	defer ls.wmu.Unlock()
	ls.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}
