// Package snapshot writes and reads versioned save blobs: a JSON header
// line followed by the gob-encoded game state, all inside one zstd stream.
// The header's version dictates the body schema.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/engine"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/traffic"
	"tradewinds.dev/internal/sim/world"
)

const Version = 1

type Header struct {
	Version     int       `json:"version"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	ClockMicros uint64    `json:"clock_micros"`
	Settlements int       `json:"settlements"`
}

// NewHeader describes st for the current blob version.
func NewHeader(name string, st *engine.State) Header {
	return Header{
		Version:     Version,
		ID:          uuid.NewString(),
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		ClockMicros: st.Clock.Micros,
		Settlements: len(st.Settlements),
	}
}

// bodyV1 is the gob schema of version 1. Set-valued maps are flattened to
// slices because gob cannot carry struct{} values.
type bodyV1 struct {
	World       *world.World
	Bridges     bridge.Store
	Routes      route.Routes
	Traffic     []positionKeysV1
	EdgeTraffic []edgeKeysV1
	Gates       []routeGatesV1
	Settlements settlement.Store
	Nations     []nationV1
	Territory   *territory.Territory
	BuildQueue  build.Queue
	SimQueue    []grid.Position
	Clock       engine.ClockState
	Revealed    []grid.Position
}

type positionKeysV1 struct {
	Position grid.Position
	Keys     []route.Key
}

type edgeKeysV1 struct {
	Edge grid.Edge
	Keys []route.Key
}

type routeGatesV1 struct {
	Key       route.Key
	Positions []grid.Position
}

type nationV1 struct {
	Name      string
	Colour    string
	TownNames []string
	UsedNames []string
}

func bodyOf(st *engine.State) bodyV1 {
	body := bodyV1{
		World:       st.World,
		Bridges:     st.Bridges,
		Routes:      st.Routes,
		Settlements: st.Settlements,
		Territory:   st.Territory,
		BuildQueue:  st.BuildQueue,
		SimQueue:    st.SimQueue,
		Clock:       st.Clock,
	}
	for position, keys := range st.Traffic {
		entry := positionKeysV1{Position: position}
		for key := range keys {
			entry.Keys = append(entry.Keys, key)
		}
		body.Traffic = append(body.Traffic, entry)
	}
	for edge, keys := range st.EdgeTraffic {
		entry := edgeKeysV1{Edge: edge}
		for key := range keys {
			entry.Keys = append(entry.Keys, key)
		}
		body.EdgeTraffic = append(body.EdgeTraffic, entry)
	}
	for key, positions := range st.Gates {
		entry := routeGatesV1{Key: key}
		for position := range positions {
			entry.Positions = append(entry.Positions, position)
		}
		body.Gates = append(body.Gates, entry)
	}
	for _, n := range st.Nations {
		entry := nationV1{Name: n.Name, Colour: n.Colour, TownNames: n.TownNames}
		for name := range n.UsedNames {
			entry.UsedNames = append(entry.UsedNames, name)
		}
		body.Nations = append(body.Nations, entry)
	}
	for position := range st.Revealed {
		body.Revealed = append(body.Revealed, position)
	}
	return body
}

func (b bodyV1) state() *engine.State {
	st := engine.NewState()
	st.World = b.World
	st.SimQueue = b.SimQueue
	st.Clock = b.Clock
	if b.Bridges != nil {
		st.Bridges = b.Bridges
	}
	if b.Routes != nil {
		st.Routes = b.Routes
	}
	if b.Settlements != nil {
		st.Settlements = b.Settlements
	}
	if b.Territory != nil {
		st.Territory = b.Territory
	}
	if b.BuildQueue != nil {
		st.BuildQueue = b.BuildQueue
	}
	for _, entry := range b.Traffic {
		keys := traffic.KeySet{}
		for _, key := range entry.Keys {
			keys[key] = struct{}{}
		}
		st.Traffic[entry.Position] = keys
	}
	for _, entry := range b.EdgeTraffic {
		keys := traffic.KeySet{}
		for _, key := range entry.Keys {
			keys[key] = struct{}{}
		}
		st.EdgeTraffic[entry.Edge] = keys
	}
	for _, entry := range b.Gates {
		st.Gates[entry.Key] = grid.NewPositionSet(entry.Positions...)
	}
	for _, entry := range b.Nations {
		nation := settlement.NewNation(entry.Name, entry.Colour, entry.TownNames)
		for _, name := range entry.UsedNames {
			nation.UsedNames[name] = struct{}{}
		}
		st.Nations[entry.Name] = nation
	}
	for _, position := range b.Revealed {
		st.Revealed.Add(position)
	}
	return st
}

// Write saves st under header to path, creating parent directories.
func Write(path string, header Header, st *engine.State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, err := json.Marshal(header)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	body := bodyOf(st)
	if err := gob.NewEncoder(bw).Encode(&body); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

// Read loads a save blob, dispatching on the header version.
func Read(path string) (Header, *engine.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	header, err := readHeader(br)
	if err != nil {
		return Header{}, nil, err
	}
	switch header.Version {
	case 1:
		var body bodyV1
		if err := gob.NewDecoder(br).Decode(&body); err != nil {
			return Header{}, nil, fmt.Errorf("gob decode: %w", err)
		}
		return header, body.state(), nil
	default:
		return Header{}, nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}
}

// ReadHeader decodes just the header line; cmd/inspect uses it to describe
// blobs without decoding the body.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()

	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	line, err := br.ReadBytes('\n')
	if err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return Header{}, fmt.Errorf("decode header: %w", err)
	}
	return header, nil
}
