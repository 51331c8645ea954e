package params

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default parameters invalid: %v", err)
	}
}

func TestParseYaml(t *testing.T) {
	raw := `
width: 64
height: 32
default_speed: 2
visibility_radius: 4
world_gen:
  sea_level: 0.5
  beach_level: 0.05
  cliff_gradient: 0.3
  max_height: 8
avatar_travel:
  walk_millis: 2000
  road_millis: 400
  planned_road_millis: 400
  river_millis: 800
  stream_millis: 3000
  sea_millis: 800
  max_walk_gradient: 0.5
  max_navigable_river_gradient: 0.1
  min_navigable_river_width: 0.1
auto_road_travel:
  road_millis: 400
  max_gradient: 0.5
simulation:
  road_build_threshold: 8
  traffic_to_population: 0.5
  nation_flip_traffic_pc: 0.67
  initial_town_population: 0.5
  town_removal_population: 0.25
  territory_millis: 30000
  homeland_count: 4
  step_millis: 1000
bridges:
  deck_height: 0.45
  max_gradient: 0.3
  max_landing_zone_gradient: 0.3
  segment_millis: 1200
nations:
  - name: norsca
    colour: "#8b0000"
    town_names: [Skarvik, Hargen]
`
	p, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Width != 64 || p.Height != 32 {
		t.Fatalf("dimensions: %dx%d", p.Width, p.Height)
	}
	if p.DefaultSpeed != 2 {
		t.Fatalf("default speed %v", p.DefaultSpeed)
	}
	if len(p.Nations) != 1 || p.Nations[0].Name != "norsca" {
		t.Fatalf("nations: %+v", p.Nations)
	}
	avatar := p.AvatarDuration(true)
	if avatar.WalkDuration != 2*time.Second || !avatar.Modes.IncludePlannedRoads {
		t.Fatalf("avatar duration: %+v", avatar)
	}
	if p.TerritoryDuration() != 30*time.Second {
		t.Fatalf("territory duration: %v", p.TerritoryDuration())
	}
}

func TestParseRejectsMissingNations(t *testing.T) {
	p := Default()
	p.Nations = nil
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "parameters") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsBadThreshold(t *testing.T) {
	p := Default()
	p.Simulation.RoadBuildThreshold = 0
	if err := p.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseRejectsMalformedYaml(t *testing.T) {
	if _, err := Parse([]byte("width: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
