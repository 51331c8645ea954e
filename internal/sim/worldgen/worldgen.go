// Package worldgen builds new-game worlds: layered simplex elevation with a
// guaranteed sea border, climate, rivers traced downhill, per-cell resources
// and homeland placement along the coast.
package worldgen

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/params"
	"tradewinds.dev/internal/sim/world"
)

// Generate builds a world from the generation parameters. The same
// parameters always produce the same world.
func Generate(p params.Parameters) *world.World {
	elevNoise := opensimplex.NewNormalized(p.Seed)
	rainNoise := opensimplex.NewNormalized(p.Seed + 1)
	tempNoise := opensimplex.NewNormalized(p.Seed + 2)

	width, height := p.Width, p.Height
	elevations := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, p.WorldGen.Octaves, 1.0/64.0, 0.5)
			elev *= edgeFalloff(fx, fy, float64(width), float64(height))
			elevations[y*width+x] = float32(elev) * p.WorldGen.MaxHeight
		}
	}
	w := world.New(width, height, elevations, p.WorldGen.SeaLevel)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx, fy := float64(x), float64(y)
			rain := octaveNoise(rainNoise, fx, fy, 4, 1.0/48.0, 0.5)
			temp := octaveNoise(tempNoise, fx, fy, 4, 1.0/48.0, 0.5)
			// Warmer toward the horizontal midline, colder with altitude.
			latitude := 1 - math.Abs(fy-float64(height)/2)/(float64(height)/2)
			cell := w.Cell(grid.P(x, y))
			altitude := float64(cell.Elevation / p.WorldGen.MaxHeight)
			cell.Climate = world.Climate{
				Rainfall:    float32(rain),
				Temperature: float32(temp*0.4 + latitude*0.4 + (1-altitude)*0.2),
			}
		}
	}

	rng := rand.New(rand.NewSource(p.Seed + 3))
	traceRivers(w, p, rng)
	placeResources(w, p)
	return w
}

// edgeFalloff pushes elevations down toward the grid border so the world is
// ringed by sea.
func edgeFalloff(x, y, width, height float64) float64 {
	dx := math.Abs(x-width/2) / (width / 2)
	dy := math.Abs(y-height/2) / (height / 2)
	d := math.Max(dx, dy)
	falloff := 1 - math.Pow(d, 3.5)
	if falloff < 0 {
		return 0
	}
	return falloff
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total, amplitude, maxValue := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxValue
}

// traceRivers follows the steepest descent from high cells to the sea,
// widening the channel as it flows.
func traceRivers(w *world.World, p params.Parameters, rng *rand.Rand) {
	var sources []grid.Position
	// Against the observed peak, not the configured ceiling, so low worlds
	// still get rivers.
	threshold := p.WorldGen.SeaLevel + (w.MaxHeight-p.WorldGen.SeaLevel)*0.6
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.Cell(grid.P(x, y)).Elevation > threshold {
				sources = append(sources, grid.P(x, y))
			}
		}
	}
	rng.Shuffle(len(sources), func(i, j int) { sources[i], sources[j] = sources[j], sources[i] })
	if len(sources) > p.WorldGen.Rivers {
		sources = sources[:p.WorldGen.Rivers]
	}
	for _, source := range sources {
		traceRiver(w, source)
	}
}

func traceRiver(w *world.World, start grid.Position) {
	current := start
	visited := grid.PositionSet{}
	width := float32(0.05)
	maxSteps := w.Width + w.Height
	for step := 0; step < maxSteps; step++ {
		visited.Add(current)
		if w.IsSea(current) {
			return
		}
		next, ok := lowestNeighbour(w, current, visited)
		if !ok {
			return
		}
		setRiver(w, grid.NewEdge(current, next), width)
		if width < 2.0 {
			width += 0.05
		}
		current = next
	}
}

func lowestNeighbour(w *world.World, p grid.Position, visited grid.PositionSet) (grid.Position, bool) {
	best := p
	bestElevation := w.Cell(p).Elevation
	found := false
	for _, neighbour := range grid.Neighbours(p) {
		if !w.InBounds(neighbour) || visited.Contains(neighbour) {
			continue
		}
		elevation := w.Cell(neighbour).Elevation
		if elevation < bestElevation {
			best, bestElevation, found = neighbour, elevation, true
		}
	}
	return best, found
}

// setRiver marks the river junction over edge on both cells, keeping the
// wider of the existing and new widths.
func setRiver(w *world.World, edge grid.Edge, width float32) {
	widen := func(j *grid.Junction1D) {
		if width > j.Width {
			j.Width = width
		}
	}
	from := w.Cell(edge.From).River.Axis(edge.Horizontal())
	from.From = true
	widen(from)
	to := w.Cell(edge.To).River.Axis(edge.Horizontal())
	to.To = true
	widen(to)
}

// placeResources derives each cell's resource set from elevation and
// climate.
func placeResources(w *world.World, p params.Parameters) {
	maxHeight := p.WorldGen.MaxHeight
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			pos := grid.P(x, y)
			cell := w.Cell(pos)
			altitude := cell.Elevation / maxHeight
			climate := cell.Climate

			if w.IsSea(pos) {
				depth := (w.SeaLevel - cell.Elevation) / w.SeaLevel
				if depth <= p.ResourceGen.ShallowDepthPc {
					cell.Resources.Add(world.ResourceCrabs)
				} else {
					cell.Resources.Add(world.ResourceWhales)
				}
				continue
			}

			if w.MaxAbsRise(pos) <= p.ResourceGen.FarmlandMaxGradient &&
				climate.Rainfall >= p.ResourceGen.FarmlandMinRainfall &&
				climate.Temperature > 0.3 {
				cell.Resources.Add(world.ResourceFarmland)
			}
			switch {
			case climate.Rainfall > 0.55 && altitude < 0.6:
				cell.Resources.Add(world.ResourceWood)
			case climate.Rainfall > 0.35 && altitude < 0.5:
				cell.Resources.Add(world.ResourcePasture)
			}
			if altitude > 0.6 {
				cell.Resources.Add(world.ResourceStone)
				if climate.Temperature < 0.3 {
					cell.Resources.Add(world.ResourceIron)
				}
			}
			if altitude > 0.75 {
				cell.Resources.Add(world.ResourceCoal)
				if climate.Rainfall < 0.3 {
					cell.Resources.Add(world.ResourceGold)
				}
			}
			if altitude > 0.9 {
				cell.Resources.Add(world.ResourceGems)
			}
			if climate.Temperature < 0.2 {
				cell.Resources.Add(world.ResourceFurs)
			}
			if climate.Temperature > 0.75 && climate.Rainfall > 0.5 {
				cell.Resources.Add(world.ResourceSpice)
			}
		}
	}
}

// Homelands picks coastal land positions for the starting settlements,
// spread so no two share a stretch of shore.
func Homelands(w *world.World, count int, rng *rand.Rand) []grid.Position {
	var shore []grid.Position
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := grid.P(x, y)
			if w.IsSea(p) {
				continue
			}
			for _, neighbour := range grid.Neighbours(p) {
				if w.InBounds(neighbour) && w.IsSea(neighbour) {
					shore = append(shore, p)
					break
				}
			}
		}
	}
	rng.Shuffle(len(shore), func(i, j int) { shore[i], shore[j] = shore[j], shore[i] })

	minSeparation := (w.Width + w.Height) / (count * 2)
	var chosen []grid.Position
	for _, candidate := range shore {
		if len(chosen) == count {
			break
		}
		tooClose := false
		for _, existing := range chosen {
			if grid.Manhattan(candidate, existing) < minSeparation {
				tooClose = true
				break
			}
		}
		if !tooClose {
			chosen = append(chosen, candidate)
		}
	}
	return chosen
}
