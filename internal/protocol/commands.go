// Package protocol defines the drawing commands the simulation emits to the
// renderer. The channel is one way: the simulation never reads back from it.
package protocol

import (
	"sync"

	"github.com/google/uuid"

	"tradewinds.dev/internal/grid"
)

const Version = "1.0"

// Command types.
const (
	TypeCreateDrawing = "CREATE_DRAWING"
	TypeUpdateDrawing = "UPDATE_DRAWING"
	TypeEraseDrawing  = "ERASE_DRAWING"
	TypeSetVisible    = "SET_VISIBLE"
	TypeRefreshRegion = "REFRESH_REGION"
)

// Drawing kinds the renderer knows how to draw.
const (
	KindRoad   = "road"
	KindBridge = "bridge"
	KindTown   = "town"
	KindCrop   = "crop"
	KindRoute  = "route"
)

// Point is a grid position on the wire.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func PointOf(p grid.Position) Point { return Point{X: p.X, Y: p.Y} }

func PointsOf(positions []grid.Position) []Point {
	out := make([]Point, len(positions))
	for i, p := range positions {
		out[i] = PointOf(p)
	}
	return out
}

// Drawing is a named renderer artefact. The id is stable for the life of
// the name so the renderer can update or erase it in place.
type Drawing struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Kind   string    `json:"kind,omitempty"`
	Points []Point   `json:"points,omitempty"`
	Colour string    `json:"colour,omitempty"`
}

// Region is an inclusive cell rectangle the world artist must redraw.
type Region struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Command is one message on the renderer channel.
type Command struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Drawing         *Drawing `json:"drawing,omitempty"`
	Visible         []Point  `json:"visible,omitempty"`
	Region          *Region  `json:"region,omitempty"`
}

// SetVisible announces newly revealed cells.
func SetVisible(points []Point) Command {
	return Command{Type: TypeSetVisible, ProtocolVersion: Version, Visible: points}
}

// RefreshRegion asks the world artist to redraw a cell rectangle.
func RefreshRegion(from, to Point) Command {
	return Command{
		Type:            TypeRefreshRegion,
		ProtocolVersion: Version,
		Region:          &Region{From: from, To: to},
	}
}

// Drawings assigns stable ids to named drawings across their lifetime.
type Drawings struct {
	mu  sync.Mutex
	ids map[string]uuid.UUID
}

func NewDrawings() *Drawings {
	return &Drawings{ids: map[string]uuid.UUID{}}
}

// Draw emits a create for an unknown name and an update for a known one,
// reusing the name's id.
func (d *Drawings) Draw(name, kind string, points []Point, colour string) Command {
	d.mu.Lock()
	id, known := d.ids[name]
	if !known {
		id = uuid.New()
		d.ids[name] = id
	}
	d.mu.Unlock()

	typ := TypeCreateDrawing
	if known {
		typ = TypeUpdateDrawing
	}
	return Command{
		Type:            typ,
		ProtocolVersion: Version,
		Drawing:         &Drawing{ID: id, Name: name, Kind: kind, Points: points, Colour: colour},
	}
}

// Erase retires a drawing. Unknown names return ok false and nothing should
// be sent.
func (d *Drawings) Erase(name string) (Command, bool) {
	d.mu.Lock()
	id, known := d.ids[name]
	delete(d.ids, name)
	d.mu.Unlock()
	if !known {
		return Command{}, false
	}
	return Command{
		Type:            TypeEraseDrawing,
		ProtocolVersion: Version,
		Drawing:         &Drawing{ID: id, Name: name},
	}, true
}
