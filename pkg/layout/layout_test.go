package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cardmap/pkg/placement"
)

func sampleLayout() Layout {
	return Layout{
		ViewType: "graph-navigation-view",
		Width:    1000,
		Height:   800,
		Center:   Card{ID: "center", Label: "Center", X: 500, Y: 400, Width: 200, Height: 120},
		Cards: []Card{
			{ID: "a.md", Label: "a", X: 735.2, Y: 447.7, Width: 200, Height: 120, Attempts: 3},
			{ID: "b.md", Label: "b", X: -80, Y: 1299, Width: 200, Height: 120, Attempts: 50, Degraded: true},
		},
		Config: placement.DefaultConfig(),
	}
}

func TestCardRect(t *testing.T) {
	c := Card{X: 500, Y: 400, Width: 200, Height: 120}
	want := placement.Rect{X: 400, Y: 340, Width: 200, Height: 120}
	if got := c.Rect(); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
}

func TestAllAndDegradedCount(t *testing.T) {
	l := sampleLayout()

	all := l.All()
	if len(all) != 3 || all[0].ID != "center" {
		t.Errorf("All() should start with the center and hold 3 cards, got %v", all)
	}
	if got := l.DegradedCount(); got != 1 {
		t.Errorf("DegradedCount() = %d, want 1", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.layout.json")
	want := sampleLayout()

	if err := WriteFile(want, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got.Center != want.Center || len(got.Cards) != len(want.Cards) || got.Config != want.Config {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.Cards[1].Degraded {
		t.Error("degraded flag lost in round trip")
	}
}

func TestUnmarshalValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"not json", "{", "unmarshal layout"},
		{"zero size", `{"center": {"id": "c"}}`, "positive width and height"},
		{"no center", `{"width": 10, "height": 10}`, "center card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want not-exist", err)
	}
}
