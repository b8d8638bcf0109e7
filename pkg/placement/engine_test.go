package placement

import (
	"math"
	"testing"
)

func TestEngineSession(t *testing.T) {
	e := NewEngine(Config{})
	b := Bounds{Width: 1000, Height: 800}

	c := e.PlaceCenter("center", b)
	if got := c.Rect.Center(); got != (Point{X: 500, Y: 400}) {
		t.Fatalf("center at %v, want (500, 400)", got)
	}

	ids := []string{"a.md", "b.md", "c.md", "d.md", "e.md"}
	for i, id := range ids {
		_, res := e.Place(id, i, len(ids), b)
		if res.Exhausted {
			t.Fatalf("%s exhausted the search", id)
		}
	}

	if e.Len() != len(ids) {
		t.Fatalf("Len() = %d, want %d", e.Len(), len(ids))
	}

	items := e.Items()
	for i, it := range items {
		if it.ID != ids[i] {
			t.Errorf("Items()[%d] = %s, want %s", i, it.ID, ids[i])
		}
		if Collides(it.Rect, c.Rect, e.Config().MinGap) {
			t.Errorf("%s collides with center", it.ID)
		}
		for _, other := range items[i+1:] {
			if Collides(it.Rect, other.Rect, e.Config().MinGap) {
				t.Errorf("%s collides with %s", it.ID, other.ID)
			}
		}
	}

	if obs := e.Obstacles(); len(obs) != len(ids)+1 || obs[0] != c.Rect {
		t.Errorf("Obstacles() should start with the center and hold %d rects, got %d", len(ids)+1, len(obs))
	}
}

func TestEngineMatchesFindPosition(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	b := Bounds{Width: 800, Height: 600}
	e.PlaceCenter("center", b)

	for i := 0; i < 3; i++ {
		want := FindPosition(i, 3, b, e.Obstacles(), cfg.CardSize(), cfg)
		it, _ := e.Place(string(rune('a'+i)), i, 3, b)
		if got := it.Rect.Center(); got != want {
			t.Errorf("item %d at %v, want %v", i, got, want)
		}
	}
}

func TestEngineReplaceAndClear(t *testing.T) {
	e := NewEngine(DefaultConfig())
	b := Bounds{Width: 1000, Height: 800}
	e.PlaceCenter("center", b)

	first, _ := e.Place("note.md", 0, 1, b)
	again, _ := e.Place("note.md", 0, 1, b)
	if e.Len() != 1 {
		t.Fatalf("Len() = %d after re-placing, want 1", e.Len())
	}
	if first.Rect != again.Rect {
		t.Errorf("re-placing with the same inputs moved the item: %v -> %v", first.Rect, again.Rect)
	}
	if _, ok := e.Item("note.md"); !ok {
		t.Error("Item() should find note.md")
	}

	e.Clear()
	if e.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", e.Len())
	}
	if _, ok := e.CenterItem(); ok {
		t.Error("center should be gone after Clear")
	}
	if len(e.Obstacles()) != 0 {
		t.Error("Obstacles() should be empty after Clear")
	}
}

func TestConfigWithDefaults(t *testing.T) {
	got := Config{CardWidth: 150, MaxAttempts: 10}.WithDefaults()
	want := DefaultConfig()
	want.CardWidth = 150
	want.MaxAttempts = 10
	if got != want {
		t.Errorf("WithDefaults() = %+v, want %+v", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero value", Config{}, false},
		{"negative width", Config{CardWidth: -1}, true},
		{"negative gap", Config{MinGap: -5}, true},
		{"negative padding", Config{BoundaryPadding: -1}, true},
		{"negative radius", Config{InitialRadius: -1}, true},
		{"negative step", Config{RadiusStep: -1}, true},
		{"negative attempts", Config{MaxAttempts: -1}, true},
		{"negative angle step allowed", Config{AngleStep: -0.1}, false},
		{"nan angle step", Config{AngleStep: math.NaN()}, true},
		{"nan card width", Config{CardWidth: math.NaN()}, true},
		{"infinite radius", Config{InitialRadius: math.Inf(1)}, true},
		{"negative infinite gap", Config{MinGap: math.Inf(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
