package protocol

import (
	"encoding/json"
	"testing"

	"tradewinds.dev/internal/grid"
)

func TestDrawKeepsStableIDPerName(t *testing.T) {
	d := NewDrawings()
	points := PointsOf([]grid.Position{grid.P(1, 2), grid.P(2, 2)})

	first := d.Draw("road-1-2", KindRoad, points, "")
	if first.Type != TypeCreateDrawing {
		t.Fatalf("first draw type %q, want %q", first.Type, TypeCreateDrawing)
	}
	second := d.Draw("road-1-2", KindRoad, points, "")
	if second.Type != TypeUpdateDrawing {
		t.Fatalf("second draw type %q, want %q", second.Type, TypeUpdateDrawing)
	}
	if first.Drawing.ID != second.Drawing.ID {
		t.Fatalf("id changed across draws: %v then %v", first.Drawing.ID, second.Drawing.ID)
	}

	other := d.Draw("road-3-4", KindRoad, nil, "")
	if other.Drawing.ID == first.Drawing.ID {
		t.Fatalf("distinct names share id %v", other.Drawing.ID)
	}
}

func TestEraseRetiresName(t *testing.T) {
	d := NewDrawings()
	created := d.Draw("town-skarvik", KindTown, nil, "#8b0000")

	erase, ok := d.Erase("town-skarvik")
	if !ok {
		t.Fatalf("erase of known name refused")
	}
	if erase.Drawing.ID != created.Drawing.ID {
		t.Fatalf("erase id %v, want %v", erase.Drawing.ID, created.Drawing.ID)
	}
	if _, ok := d.Erase("town-skarvik"); ok {
		t.Fatalf("erase of retired name accepted")
	}

	// Redrawing after erase is a fresh create with a new id.
	again := d.Draw("town-skarvik", KindTown, nil, "#8b0000")
	if again.Type != TypeCreateDrawing || again.Drawing.ID == created.Drawing.ID {
		t.Fatalf("redraw after erase type %q id %v, want create with fresh id", again.Type, again.Drawing.ID)
	}
}

func TestCommandWireFormat(t *testing.T) {
	cmd := SetVisible(PointsOf([]grid.Position{grid.P(4, 7)}))
	raw, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != TypeSetVisible || decoded["protocol_version"] != Version {
		t.Fatalf("wire envelope %v", decoded)
	}
	if _, present := decoded["drawing"]; present {
		t.Fatalf("empty drawing serialised: %v", decoded)
	}

	region := RefreshRegion(Point{X: 0, Y: 0}, Point{X: 3, Y: 3})
	raw, err = json.Marshal(region)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Command
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Region == nil || back.Region.To != (Point{X: 3, Y: 3}) {
		t.Fatalf("region lost on round trip: %+v", back)
	}
}
