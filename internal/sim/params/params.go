// Package params loads the read-only game parameters from yaml and
// validates them against an embedded schema before the engine starts.
package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/travel"
)

// Parameters is read-only after startup; every tuning constant the
// simulation consumes lives here.
type Parameters struct {
	Seed   int64 `yaml:"seed" json:"seed"`
	Width  int   `yaml:"width" json:"width"`
	Height int   `yaml:"height" json:"height"`

	WorldGen       WorldGen       `yaml:"world_gen" json:"world_gen"`
	AvatarTravel   AvatarTravel   `yaml:"avatar_travel" json:"avatar_travel"`
	AutoRoadTravel AutoRoadTravel `yaml:"auto_road_travel" json:"auto_road_travel"`
	ResourceGen    ResourceGen    `yaml:"resource_gen" json:"resource_gen"`
	Simulation     Simulation     `yaml:"simulation" json:"simulation"`
	Bridges        BridgeParams   `yaml:"bridges" json:"bridges"`
	Nations        []NationParams `yaml:"nations" json:"nations"`

	// DefaultSpeed is the clock speed a new game starts at. Zero pauses.
	DefaultSpeed     float32 `yaml:"default_speed" json:"default_speed"`
	VisibilityRadius int     `yaml:"visibility_radius" json:"visibility_radius"`
}

type WorldGen struct {
	SeaLevel      float32 `yaml:"sea_level" json:"sea_level"`
	BeachLevel    float32 `yaml:"beach_level" json:"beach_level"`
	CliffGradient float32 `yaml:"cliff_gradient" json:"cliff_gradient"`
	MaxHeight     float32 `yaml:"max_height" json:"max_height"`
	Rivers        int     `yaml:"rivers" json:"rivers"`
	Octaves       int     `yaml:"octaves" json:"octaves"`
}

// AvatarTravel carries per-mode edge durations in milliseconds.
type AvatarTravel struct {
	WalkMillis        int `yaml:"walk_millis" json:"walk_millis"`
	RoadMillis        int `yaml:"road_millis" json:"road_millis"`
	PlannedRoadMillis int `yaml:"planned_road_millis" json:"planned_road_millis"`
	RiverMillis       int `yaml:"river_millis" json:"river_millis"`
	StreamMillis      int `yaml:"stream_millis" json:"stream_millis"`
	SeaMillis         int `yaml:"sea_millis" json:"sea_millis"`

	MaxWalkGradient           float32 `yaml:"max_walk_gradient" json:"max_walk_gradient"`
	MaxNavigableRiverGradient float32 `yaml:"max_navigable_river_gradient" json:"max_navigable_river_gradient"`
	MinNavigableRiverWidth    float32 `yaml:"min_navigable_river_width" json:"min_navigable_river_width"`
}

type AutoRoadTravel struct {
	RoadMillis  int     `yaml:"road_millis" json:"road_millis"`
	MaxGradient float32 `yaml:"max_gradient" json:"max_gradient"`
}

type ResourceGen struct {
	FarmlandMaxGradient float32 `yaml:"farmland_max_gradient" json:"farmland_max_gradient"`
	FarmlandMinRainfall float32 `yaml:"farmland_min_rainfall" json:"farmland_min_rainfall"`
	ShallowDepthPc      float32 `yaml:"shallow_depth_pc" json:"shallow_depth_pc"`
	CliffEdgesForCliff  int     `yaml:"cliff_edges_for_cliff" json:"cliff_edges_for_cliff"`
}

type Simulation struct {
	RoadBuildThreshold    int     `yaml:"road_build_threshold" json:"road_build_threshold"`
	TrafficToPopulation   float64 `yaml:"traffic_to_population" json:"traffic_to_population"`
	NationFlipTrafficPc   float64 `yaml:"nation_flip_traffic_pc" json:"nation_flip_traffic_pc"`
	InitialTownPopulation float64 `yaml:"initial_town_population" json:"initial_town_population"`
	TownRemovalPopulation float64 `yaml:"town_removal_population" json:"town_removal_population"`
	TerritoryMillis       int     `yaml:"territory_millis" json:"territory_millis"`
	HomelandCount         int     `yaml:"homeland_count" json:"homeland_count"`
	StepMillis            int     `yaml:"step_millis" json:"step_millis"`
}

type BridgeParams struct {
	DeckHeight             float32 `yaml:"deck_height" json:"deck_height"`
	MaxGradient            float32 `yaml:"max_gradient" json:"max_gradient"`
	MaxLandingZoneGradient float32 `yaml:"max_landing_zone_gradient" json:"max_landing_zone_gradient"`
	SegmentMillis          int     `yaml:"segment_millis" json:"segment_millis"`
}

type NationParams struct {
	Name      string   `yaml:"name" json:"name"`
	Colour    string   `yaml:"colour" json:"colour"`
	TownNames []string `yaml:"town_names" json:"town_names"`
}

const schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["width", "height", "world_gen", "avatar_travel", "auto_road_travel", "simulation", "bridges", "nations"],
  "properties": {
    "width": {"type": "integer", "minimum": 1},
    "height": {"type": "integer", "minimum": 1},
    "default_speed": {"type": "number", "minimum": 0},
    "visibility_radius": {"type": "integer", "minimum": 0},
    "world_gen": {
      "type": "object",
      "properties": {
        "sea_level": {"type": "number", "minimum": 0},
        "max_height": {"type": "number", "exclusiveMinimum": 0},
        "cliff_gradient": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "avatar_travel": {
      "type": "object",
      "properties": {
        "walk_millis": {"type": "integer", "exclusiveMinimum": 0},
        "road_millis": {"type": "integer", "exclusiveMinimum": 0},
        "planned_road_millis": {"type": "integer", "exclusiveMinimum": 0},
        "river_millis": {"type": "integer", "exclusiveMinimum": 0},
        "stream_millis": {"type": "integer", "exclusiveMinimum": 0},
        "sea_millis": {"type": "integer", "exclusiveMinimum": 0},
        "min_navigable_river_width": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "auto_road_travel": {
      "type": "object",
      "properties": {
        "road_millis": {"type": "integer", "exclusiveMinimum": 0},
        "max_gradient": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "simulation": {
      "type": "object",
      "properties": {
        "road_build_threshold": {"type": "integer", "minimum": 1},
        "traffic_to_population": {"type": "number", "minimum": 0},
        "nation_flip_traffic_pc": {"type": "number", "minimum": 0, "maximum": 1},
        "initial_town_population": {"type": "number", "minimum": 0},
        "town_removal_population": {"type": "number", "minimum": 0},
        "homeland_count": {"type": "integer", "minimum": 1}
      }
    },
    "bridges": {
      "type": "object",
      "properties": {
        "deck_height": {"type": "number", "minimum": 0},
        "segment_millis": {"type": "integer", "exclusiveMinimum": 0}
      }
    },
    "nations": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "town_names"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "colour": {"type": "string"},
          "town_names": {"type": "array", "items": {"type": "string"}, "minItems": 1}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("parameters.schema.json", schema)

// Load reads and validates a parameters file.
func Load(path string) (Parameters, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, err
	}
	return Parse(raw)
}

// Parse decodes and validates yaml parameter bytes.
func Parse(raw []byte) (Parameters, error) {
	var p Parameters
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Parameters{}, fmt.Errorf("parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks the parameters against the embedded schema. The struct is
// round-tripped through json so the validator sees canonical types.
func (p Parameters) Validate() error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	return nil
}

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// AvatarDuration builds the travel model. includePlannedRoads selects the
// route-planning variant.
func (p Parameters) AvatarDuration(includePlannedRoads bool) travel.AvatarDuration {
	return travel.AvatarDuration{
		Modes: travel.ModeFn{
			MinNavigableRiverWidth: p.AvatarTravel.MinNavigableRiverWidth,
			IncludePlannedRoads:    includePlannedRoads,
		},
		WalkDuration:              millis(p.AvatarTravel.WalkMillis),
		RoadDuration:              millis(p.AvatarTravel.RoadMillis),
		PlannedRoadDuration:       millis(p.AvatarTravel.PlannedRoadMillis),
		RiverDuration:             millis(p.AvatarTravel.RiverMillis),
		StreamDuration:            millis(p.AvatarTravel.StreamMillis),
		SeaDuration:               millis(p.AvatarTravel.SeaMillis),
		MaxWalkGradient:           p.AvatarTravel.MaxWalkGradient,
		MaxNavigableRiverGradient: p.AvatarTravel.MaxNavigableRiverGradient,
	}
}

func (p Parameters) AutoRoadDuration() travel.AutoRoadDuration {
	return travel.AutoRoadDuration{
		RoadDuration: millis(p.AutoRoadTravel.RoadMillis),
		MaxGradient:  p.AutoRoadTravel.MaxGradient,
	}
}

func (p Parameters) PierParams() bridge.PierParams {
	return bridge.PierParams{
		MinNavigableRiverWidth: p.AvatarTravel.MinNavigableRiverWidth,
		MaxGradient:            p.Bridges.MaxGradient,
		MaxLandingZoneGradient: p.Bridges.MaxLandingZoneGradient,
	}
}

func (p Parameters) TerritoryDuration() time.Duration {
	return millis(p.Simulation.TerritoryMillis)
}

func (p Parameters) StepDuration() time.Duration {
	return millis(p.Simulation.StepMillis)
}

// Default is a playable parameter set; new games and tests start from it.
func Default() Parameters {
	return Parameters{
		Seed:   0,
		Width:  256,
		Height: 256,
		WorldGen: WorldGen{
			SeaLevel:      0.5,
			BeachLevel:    0.05,
			CliffGradient: 0.3,
			MaxHeight:     16,
			Rivers:        128,
			Octaves:       8,
		},
		AvatarTravel: AvatarTravel{
			WalkMillis:                2500,
			RoadMillis:                500,
			PlannedRoadMillis:         500,
			RiverMillis:               900,
			StreamMillis:              4000,
			SeaMillis:                 900,
			MaxWalkGradient:           0.5,
			MaxNavigableRiverGradient: 0.1,
			MinNavigableRiverWidth:    0.1,
		},
		AutoRoadTravel: AutoRoadTravel{
			RoadMillis:  500,
			MaxGradient: 0.5,
		},
		ResourceGen: ResourceGen{
			FarmlandMaxGradient: 0.2,
			FarmlandMinRainfall: 0.3,
			ShallowDepthPc:      0.25,
			CliffEdgesForCliff:  2,
		},
		Simulation: Simulation{
			RoadBuildThreshold:    8,
			TrafficToPopulation:   0.5,
			NationFlipTrafficPc:   0.67,
			InitialTownPopulation: 0.5,
			TownRemovalPopulation: 0.25,
			TerritoryMillis:       30000,
			HomelandCount:         8,
			StepMillis:            1000,
		},
		Bridges: BridgeParams{
			DeckHeight:             0.45,
			MaxGradient:            0.3,
			MaxLandingZoneGradient: 0.3,
			SegmentMillis:          1200,
		},
		Nations: []NationParams{
			{Name: "norsca", Colour: "#8b0000", TownNames: []string{"Skarvik", "Hargen", "Thornby"}},
			{Name: "veldt", Colour: "#006400", TownNames: []string{"Amberfield", "Korshaven", "Dunmoor"}},
		},
		DefaultSpeed:     1,
		VisibilityRadius: 16,
	}
}
