package territory

import (
	"testing"
	"time"

	"tradewinds.dev/internal/grid"
)

func TestClosestClaimantControls(t *testing.T) {
	terr := New()
	a, b := grid.P(0, 0), grid.P(5, 5)
	p := grid.P(2, 2)

	terr.UpdateDurations(a, []PositionDuration{{Position: p, Duration: 3 * time.Millisecond}}, 10)
	terr.UpdateDurations(b, []PositionDuration{{Position: p, Duration: 2 * time.Millisecond}}, 20)

	controller, ok := terr.Controller(p)
	if !ok || controller != b {
		t.Fatalf("controller: got %v %v", controller, ok)
	}
	if !terr.Controlled(b).Contains(p) {
		t.Fatalf("controlled set missing %v", p)
	}
	if terr.Controlled(a).Contains(p) {
		t.Fatalf("losing claimant controls %v", p)
	}
}

func TestTieBrokenByEarliestClaim(t *testing.T) {
	terr := New()
	a, b := grid.P(0, 0), grid.P(5, 5)
	p := grid.P(2, 2)

	terr.UpdateDurations(b, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 5)
	terr.UpdateDurations(a, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 10)

	controller, _ := terr.Controller(p)
	if controller != b {
		t.Fatalf("earliest claim should win ties: got %v", controller)
	}
}

func TestUpdateKeepsOriginalClaimTime(t *testing.T) {
	terr := New()
	a, b := grid.P(0, 0), grid.P(5, 5)
	p := grid.P(2, 2)

	terr.UpdateDurations(a, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 5)
	// Refreshing a's claim later keeps the original claim time.
	terr.UpdateDurations(a, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 50)
	terr.UpdateDurations(b, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 20)

	controller, _ := terr.Controller(p)
	if controller != a {
		t.Fatalf("refreshed claim lost seniority: got %v", controller)
	}
}

func TestUpdateReplacesReach(t *testing.T) {
	terr := New()
	a := grid.P(0, 0)
	p1, p2 := grid.P(1, 0), grid.P(2, 0)

	terr.UpdateDurations(a, []PositionDuration{{Position: p1, Duration: time.Millisecond}}, 0)
	terr.UpdateDurations(a, []PositionDuration{{Position: p2, Duration: time.Millisecond}}, 1)

	if terr.AnyoneControls(p1) {
		t.Fatalf("stale claim survived update")
	}
	if !terr.AnyoneControls(p2) {
		t.Fatalf("new claim missing")
	}
}

func TestRemoveController(t *testing.T) {
	terr := New()
	a := grid.P(0, 0)
	p := grid.P(1, 0)
	terr.UpdateDurations(a, []PositionDuration{{Position: p, Duration: time.Millisecond}}, 0)
	terr.RemoveController(a)
	if terr.AnyoneControls(p) {
		t.Fatalf("claims survived controller removal")
	}
	if len(terr.Claims) != 0 {
		t.Fatalf("empty claim maps retained")
	}
}
