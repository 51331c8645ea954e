package world

import "tradewinds.dev/internal/grid"

// Resource is a tradeable good that can occur at a cell.
type Resource uint8

const (
	ResourceNone Resource = iota
	ResourceFarmland
	ResourceWood
	ResourceStone
	ResourceIron
	ResourceGold
	ResourceGems
	ResourceFurs
	ResourceSpice
	ResourcePasture
	ResourceWhales
	ResourceCrabs
	ResourceCoal
)

func (r Resource) String() string {
	switch r {
	case ResourceFarmland:
		return "farmland"
	case ResourceWood:
		return "wood"
	case ResourceStone:
		return "stone"
	case ResourceIron:
		return "iron"
	case ResourceGold:
		return "gold"
	case ResourceGems:
		return "gems"
	case ResourceFurs:
		return "furs"
	case ResourceSpice:
		return "spice"
	case ResourcePasture:
		return "pasture"
	case ResourceWhales:
		return "whales"
	case ResourceCrabs:
		return "crabs"
	case ResourceCoal:
		return "coal"
	}
	return "none"
}

// ResourceSet is a bitmask over Resource values.
type ResourceSet uint32

func Resources(rs ...Resource) ResourceSet {
	var set ResourceSet
	for _, r := range rs {
		set |= 1 << r
	}
	return set
}

func (s ResourceSet) Has(r Resource) bool { return s&(1<<r) != 0 }

func (s *ResourceSet) Add(r Resource) { *s |= 1 << r }

// ObjectKind discriminates what occupies a cell.
type ObjectKind uint8

const (
	ObjectNone ObjectKind = iota
	ObjectVegetation
	ObjectCrop
	ObjectHouse
	ObjectTownAnchor
)

// VegetationKind is only meaningful when Kind is ObjectVegetation.
type VegetationKind uint8

const (
	VegetationNone VegetationKind = iota
	VegetationPalm
	VegetationDeciduous
	VegetationEvergreen
	VegetationCactus
)

// WorldObject is the single occupant of a cell. Rotation orients crops and
// houses for the renderer.
type WorldObject struct {
	Kind       ObjectKind
	Vegetation VegetationKind
	Rotation   grid.Rotation
}

// Climate drives resource placement; read-only after generation.
type Climate struct {
	Temperature float32
	Rainfall    float32
}

// Cell is one grid cell. Attributes mutate over the life of the game; the
// cell itself never moves or disappears.
type Cell struct {
	Elevation   float32
	River       grid.Junction
	Road        grid.Junction
	PlannedRoad grid.PlannedJunction
	Visible     bool
	Visited     bool
	Object      WorldObject
	Resources   ResourceSet
	Climate     Climate
}
