package placement_test

import (
	"fmt"

	"github.com/matzehuels/cardmap/pkg/placement"
)

func ExampleCenter() {
	p := placement.Center(placement.Bounds{Width: 800, Height: 600})
	fmt.Printf("(%g, %g)\n", p.X, p.Y)
	// Output: (400, 300)
}

func ExampleEngine() {
	e := placement.NewEngine(placement.DefaultConfig())
	bounds := placement.Bounds{Width: 1000, Height: 800}

	e.PlaceCenter("center", bounds)
	for i := 0; i < 5; i++ {
		_, res := e.Place(fmt.Sprintf("note-%d.md", i), i, 5, bounds)
		fmt.Printf("%d: (%.1f, %.1f) after %d attempt(s)\n", i, res.Point.X, res.Point.Y, res.Attempts)
	}
	// Output:
	// 0: (735.2, 447.7) after 3 attempt(s)
	// 1: (561.8, 590.2) after 1 attempt(s)
	// 2: (253.9, 483.8) after 4 attempt(s)
	// 3: (335.8, 253.6) after 2 attempt(s)
	// 4: (561.8, 209.8) after 1 attempt(s)
}

func ExampleCollides() {
	a := placement.Rect{X: 0, Y: 0, Width: 100, Height: 50}
	b := placement.Rect{X: 115, Y: 0, Width: 100, Height: 50}

	fmt.Println(placement.Collides(a, b, 20))
	fmt.Println(placement.Collides(a, b, 10))
	// Output:
	// true
	// false
}
