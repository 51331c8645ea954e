package grid

import "fmt"

// Rotation is a cardinal facing, used by journeys and bridge piers.
type Rotation uint8

const (
	Left Rotation = iota
	Up
	Right
	Down
)

func (r Rotation) String() string {
	switch r {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	}
	return fmt.Sprintf("rotation(%d)", uint8(r))
}

func (r Rotation) Clockwise() Rotation {
	switch r {
	case Left:
		return Up
	case Up:
		return Right
	case Right:
		return Down
	default:
		return Left
	}
}

func (r Rotation) Anticlockwise() Rotation {
	switch r {
	case Left:
		return Down
	case Down:
		return Right
	case Right:
		return Up
	default:
		return Left
	}
}

// RotationBetween gives the facing travelling from one cell to an adjacent
// cell. Identical or diagonal positions are a programming error.
func RotationBetween(from, to Position) Rotation {
	switch {
	case to.X > from.X && to.Y == from.Y:
		return Right
	case to.X < from.X && to.Y == from.Y:
		return Left
	case to.Y > from.Y && to.X == from.X:
		return Up
	case to.Y < from.Y && to.X == from.X:
		return Down
	}
	panic(fmt.Sprintf("no rotation between non-adjacent positions %v and %v", from, to))
}
