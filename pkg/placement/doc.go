// Package placement computes non-overlapping positions for cards arranged
// around a center card inside a bounded container.
//
// # Overview
//
// The package is a pure, framework-agnostic engine. Given container bounds
// and the size of a card, it searches outward along a spiral for a position
// where the card's rectangle keeps a minimum gap from every obstacle and
// stays inside the container inset by a boundary padding.
//
//	cfg := placement.DefaultConfig()
//	bounds := placement.Bounds{Width: 1000, Height: 800}
//	center := placement.Center(bounds)            // (500, 400)
//	p := placement.FindPosition(0, 5, bounds, obstacles, cfg.CardSize(), cfg)
//
// # Search
//
// For item i of n, the first candidate sits at angle i/n·2π on a circle of
// radius [Config.InitialRadius] around the container center. Each rejected
// candidate grows the radius by [Config.RadiusStep] and turns the angle by
// [Config.AngleStep]. After [Config.MaxAttempts] candidates the last one is
// returned even if it still collides or leaves the boundary. Use [Search]
// to learn whether that fallback was taken.
//
// # Collision Test
//
// [Collides] is a padded AABB test: two rectangles collide unless they are
// separated by more than the gap along the x or y axis. [WithinBoundary]
// checks containment in the container shrunk by a padding on every side.
//
// # Sessions
//
// [Engine] accumulates placed items for one panel session. The center item
// is placed first, and every later item avoids the center and all items
// placed before it. An Engine is not safe for concurrent use.
package placement
