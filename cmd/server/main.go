package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/persistence/index"
	persistlog "tradewinds.dev/internal/persistence/log"
	"tradewinds.dev/internal/persistence/snapshot"
	"tradewinds.dev/internal/protocol"
	"tradewinds.dev/internal/sim/engine"
	"tradewinds.dev/internal/sim/params"
	"tradewinds.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		paramsPath = flag.String("params", "", "path to parameters yaml (empty uses built-in defaults)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		loadName   = flag.String("load", "", "save name to resume (empty starts a new game)")
		saveName   = flag.String("save", "game", "save name written on shutdown")
		speed      = flag.Float64("speed", -1, "clock speed override (negative keeps the saved/configured speed)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	p := params.Default()
	if *paramsPath != "" {
		loaded, err := params.Load(*paramsPath)
		if err != nil {
			logger.Fatalf("load parameters: %v", err)
		}
		p = loaded
	}

	idx, err := index.Open(filepath.Join(*dataDir, "saves.db"))
	if err != nil {
		logger.Fatalf("open save index: %v", err)
	}
	defer idx.Close()

	events := persistlog.NewWriter(filepath.Join(*dataDir, "events"), "events")
	defer events.Close()

	st, err := openState(p, idx, *loadName, logger)
	if err != nil {
		logger.Fatalf("open state: %v", err)
	}
	if *speed >= 0 {
		st.Clock.Speed = float32(*speed)
	}

	// The hub exists before the engine's first reveal batch fires, so the
	// notify closure captures it by variable.
	var hub *ws.Server
	eng := engine.New(p, st, log.New(os.Stdout, "[sim] ", log.LstdFlags|log.Lmicroseconds),
		func(revealed grid.PositionSet) {
			if hub == nil {
				return
			}
			publishReveal(hub, revealed)
		})
	hub = ws.NewServer(eng, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go eng.Run(ctx)
	go settlementArtist(ctx, eng, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", hub.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")

	// Pause drains the actors; the save happens on quiescent state.
	eng.Pause()
	if err := writeSave(eng, idx, events, *dataDir, *saveName); err != nil {
		logger.Printf("save failed: %v", err)
	} else {
		logger.Printf("saved %q", *saveName)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// openState resumes the newest save under loadName, or starts a new game.
func openState(p params.Parameters, idx *index.Index, loadName string, logger *log.Logger) (*engine.State, error) {
	if loadName == "" {
		logger.Printf("new game %dx%d seed %d", p.Width, p.Height, p.Seed)
		return engine.NewGame(p), nil
	}
	save, ok, err := idx.Latest(loadName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no save named %q", loadName)
	}
	header, st, err := snapshot.Read(save.Path)
	if err != nil {
		return nil, err
	}
	logger.Printf("resumed %q from %s at %d micros", loadName, save.Path, header.ClockMicros)
	return st, nil
}

func writeSave(eng *engine.Engine, idx *index.Index, events *persistlog.Writer, dataDir, name string) error {
	var err error
	eng.Snapshot(func(st *engine.State) {
		header := snapshot.NewHeader(name, st)
		path := filepath.Join(dataDir, "saves", header.ID+".sav")
		if err = snapshot.Write(path, header, st); err != nil {
			return
		}
		err = idx.Record(index.Save{
			ID:          header.ID,
			Name:        header.Name,
			Version:     header.Version,
			CreatedAt:   header.CreatedAt.Format(time.RFC3339Nano),
			ClockMicros: int64(header.ClockMicros),
			Settlements: header.Settlements,
			Path:        path,
		})
		if err == nil {
			_ = events.Write(persistlog.Event{
				WallTime:   header.CreatedAt,
				GameMicros: header.ClockMicros,
				Kind:       persistlog.KindSaveWritten,
				Detail:     path,
			})
		}
	})
	return err
}

// publishReveal batches newly revealed cells to the renderer, plus a world
// artist refresh over their bounding rectangle.
func publishReveal(hub *ws.Server, revealed grid.PositionSet) {
	points := make([]protocol.Point, 0, len(revealed))
	minP := protocol.Point{X: 1 << 30, Y: 1 << 30}
	maxP := protocol.Point{X: -1, Y: -1}
	for p := range revealed {
		point := protocol.PointOf(p)
		points = append(points, point)
		if point.X < minP.X {
			minP.X = point.X
		}
		if point.Y < minP.Y {
			minP.Y = point.Y
		}
		if point.X > maxP.X {
			maxP.X = point.X
		}
		if point.Y > maxP.Y {
			maxP.Y = point.Y
		}
	}
	hub.Publish(protocol.SetVisible(points))
	hub.Publish(protocol.RefreshRegion(minP, maxP))
}

// settlementArtist periodically redraws settlements as named drawings and
// erases the ones that have been removed.
func settlementArtist(ctx context.Context, eng *engine.Engine, hub *ws.Server) {
	drawings := protocol.NewDrawings()
	drawn := map[string]struct{}{}
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		type sketch struct {
			name   string
			points []protocol.Point
			colour string
		}
		var sketches []sketch
		done := make(chan struct{})
		eng.Execute(func(st *engine.State) {
			defer close(done)
			for _, s := range st.Settlements {
				colour := ""
				if nation, ok := st.Nations[s.Nation]; ok {
					colour = nation.Colour
				}
				sketches = append(sketches, sketch{
					name:   fmt.Sprintf("settlement-%d-%d", s.Position.X, s.Position.Y),
					points: []protocol.Point{protocol.PointOf(s.Position)},
					colour: colour,
				})
			}
		})
		select {
		case <-done:
		case <-ctx.Done():
			return
		}

		current := map[string]struct{}{}
		for _, s := range sketches {
			current[s.name] = struct{}{}
			hub.Publish(drawings.Draw(s.name, protocol.KindTown, s.points, s.colour))
		}
		var gone []string
		for name := range drawn {
			if _, ok := current[name]; !ok {
				gone = append(gone, name)
			}
		}
		sort.Strings(gone)
		for _, name := range gone {
			if cmd, ok := drawings.Erase(name); ok {
				hub.Publish(cmd)
			}
		}
		drawn = current
	}
}
