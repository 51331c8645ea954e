// Package journey models an avatar's timed movement: a monotone sequence of
// frames with interpolation, pauses, loads and rotation.
package journey

import (
	"fmt"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

// Load is what the avatar carries, shown by the renderer.
type Load uint8

const (
	LoadNone Load = iota
	LoadResource
)

// Frame is the avatar's state on arrival at a position.
type Frame struct {
	Position      grid.Position
	Elevation     float32
	ArrivalMicros uint64
	Vehicle       travel.Vehicle
	Rotation      grid.Rotation
	Load          Load
}

// Journey is a non-empty frame sequence with non-decreasing arrivals.
type Journey struct {
	frames []Frame
}

// New prices a position path starting at startMicros, deriving each frame's
// arrival, vehicle and rotation from the travel models. An impassable step
// is a programming error because paths come from the pathfinder.
func New(
	w *world.World,
	path []grid.Position,
	modes travel.ModeFn,
	duration travel.Duration,
	startMicros uint64,
) *Journey {
	if len(path) == 0 {
		panic("journey needs at least one position")
	}
	frames := make([]Frame, 0, len(path))
	arrival := startMicros
	vehicle := travel.VehicleNone
	rotation := grid.Down
	if len(path) > 1 {
		vehicle = mustVehicle(modes, w, path[0], path[1])
		rotation = grid.RotationBetween(path[0], path[1])
	}
	frames = append(frames, Frame{
		Position:      path[0],
		Elevation:     w.Cell(path[0]).Elevation,
		ArrivalMicros: arrival,
		Vehicle:       vehicle,
		Rotation:      rotation,
	})
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		d, ok := duration.Between(w, from, to)
		if !ok {
			panic(fmt.Sprintf("impassable step %v-%v in journey path", from, to))
		}
		arrival += uint64(d.Microseconds())
		frames = append(frames, Frame{
			Position:      to,
			Elevation:     w.Cell(to).Elevation,
			ArrivalMicros: arrival,
			Vehicle:       mustVehicle(modes, w, from, to),
			Rotation:      grid.RotationBetween(from, to),
		})
	}
	return &Journey{frames: frames}
}

func mustVehicle(modes travel.ModeFn, w *world.World, from, to grid.Position) travel.Vehicle {
	v, ok := modes.VehicleBetween(w, from, to)
	if !ok {
		panic(fmt.Sprintf("no vehicle for step %v-%v", from, to))
	}
	return v
}

// FromFrames wraps a prepared frame list; used by truncation and loading.
func FromFrames(frames []Frame) *Journey {
	if len(frames) == 0 {
		panic("journey needs at least one frame")
	}
	return &Journey{frames: frames}
}

func (j *Journey) Frames() []Frame { return j.frames }
func (j *Journey) First() Frame    { return j.frames[0] }
func (j *Journey) Final() Frame    { return j.frames[len(j.frames)-1] }

// Done reports whether the journey has finished by now.
func (j *Journey) Done(nowMicros uint64) bool {
	return nowMicros >= j.Final().ArrivalMicros
}

// WorldCoord is an interpolated renderer position.
type WorldCoord struct {
	X, Y, Z float32
}

func coordOf(f Frame) WorldCoord {
	return WorldCoord{X: float32(f.Position.X), Y: float32(f.Position.Y), Z: f.Elevation}
}

// ComputeWorldCoord interpolates the avatar's position at nowMicros,
// clamping to the first and final frames outside the journey's span.
func (j *Journey) ComputeWorldCoord(nowMicros uint64) WorldCoord {
	if nowMicros <= j.First().ArrivalMicros {
		return coordOf(j.First())
	}
	if j.Done(nowMicros) {
		return coordOf(j.Final())
	}
	i := j.frameAtOrAfter(nowMicros)
	from, to := j.frames[i-1], j.frames[i]
	span := to.ArrivalMicros - from.ArrivalMicros
	p := float32(nowMicros-from.ArrivalMicros) / float32(span)
	a, b := coordOf(from), coordOf(to)
	return WorldCoord{
		X: a.X + (b.X-a.X)*p,
		Y: a.Y + (b.Y-a.Y)*p,
		Z: a.Z + (b.Z-a.Z)*p,
	}
}

// frameAtOrAfter finds the first frame whose arrival is >= nowMicros.
func (j *Journey) frameAtOrAfter(nowMicros uint64) int {
	for i, f := range j.frames {
		if f.ArrivalMicros >= nowMicros {
			return i
		}
	}
	return len(j.frames) - 1
}

// VehicleAt, RotationAt and LoadAt report the attributes of the frame at or
// immediately after now, falling back to the final frame.
func (j *Journey) VehicleAt(nowMicros uint64) travel.Vehicle {
	return j.frames[j.frameAtOrAfter(nowMicros)].Vehicle
}

func (j *Journey) RotationAt(nowMicros uint64) grid.Rotation {
	return j.frames[j.frameAtOrAfter(nowMicros)].Rotation
}

func (j *Journey) LoadAt(nowMicros uint64) Load {
	return j.frames[j.frameAtOrAfter(nowMicros)].Load
}

// Stop truncates the journey to the segment containing now. A finished
// journey collapses to its final frame.
func (j *Journey) Stop(nowMicros uint64) *Journey {
	if j.Done(nowMicros) {
		return FromFrames([]Frame{j.Final()})
	}
	if nowMicros <= j.First().ArrivalMicros {
		return FromFrames(j.frames[:1])
	}
	i := j.frameAtOrAfter(nowMicros)
	frames := make([]Frame, i+1)
	copy(frames, j.frames[:i+1])
	return FromFrames(frames)
}

// Append concatenates other onto j. The journeys must meet at a shared
// position.
func (j *Journey) Append(other *Journey) (*Journey, error) {
	if j.Final().Position != other.First().Position {
		return nil, fmt.Errorf("journeys do not meet: %v vs %v", j.Final().Position, other.First().Position)
	}
	frames := make([]Frame, 0, len(j.frames)+len(other.frames)-1)
	frames = append(frames, j.frames...)
	frames = append(frames, other.frames[1:]...)
	return FromFrames(frames), nil
}

// WithPauseAtStart duplicates the first frame, delaying every arrival.
func (j *Journey) WithPauseAtStart(pause time.Duration) *Journey {
	micros := uint64(pause.Microseconds())
	frames := make([]Frame, 0, len(j.frames)+1)
	frames = append(frames, j.frames[0])
	for _, f := range j.frames {
		f.ArrivalMicros += micros
		frames = append(frames, f)
	}
	return FromFrames(frames)
}

// WithPauseAtEnd duplicates the final frame, arriving after the pause.
func (j *Journey) WithPauseAtEnd(pause time.Duration) *Journey {
	micros := uint64(pause.Microseconds())
	frames := make([]Frame, 0, len(j.frames)+1)
	frames = append(frames, j.frames...)
	final := j.Final()
	final.ArrivalMicros += micros
	frames = append(frames, final)
	return FromFrames(frames)
}

// ThenRotateClockwise appends a zero-duration frame facing one step
// clockwise. Used when an avatar turns on the spot after arriving.
func (j *Journey) ThenRotateClockwise() *Journey {
	final := j.Final()
	final.Rotation = final.Rotation.Clockwise()
	return FromFrames(append(append([]Frame{}, j.frames...), final))
}

func (j *Journey) ThenRotateAnticlockwise() *Journey {
	final := j.Final()
	final.Rotation = final.Rotation.Anticlockwise()
	return FromFrames(append(append([]Frame{}, j.frames...), final))
}

// WithLoad sets the load on every frame.
func (j *Journey) WithLoad(load Load) *Journey {
	frames := make([]Frame, len(j.frames))
	copy(frames, j.frames)
	for i := range frames {
		frames[i].Load = load
	}
	return FromFrames(frames)
}
