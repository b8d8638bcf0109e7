// Package pkg provides the core libraries for Cardmap note panels.
//
// # Overview
//
// Cardmap arranges the notes of a vault as cards on a spiral around a center
// card. Each card is placed at the first spiral position that neither
// overlaps an earlier card nor leaves the padded panel; when no such position
// exists within the attempt budget the last candidate is kept and the card is
// marked degraded. The pkg directory is organized into these areas:
//
//  1. [placement] - The spiral search, collision test and boundary test
//  2. [panel] - Views, the view registry and the navigation view
//  3. [vault] - Note listing (directories and fixed item lists)
//  4. [layout] - The serialized result of a placement run
//  5. [render] - SVG, JSON, DOT and PNG output
//  6. [pipeline] - Orchestration (list → layout → render) with caching
//  7. [cache], [config], [session], [server] - Infrastructure
//
// # Architecture
//
//	Vault directory or posted items
//	         ↓
//	    [vault] package (list items)
//	         ↓
//	    [panel] package (open a view, place cards via [placement])
//	         ↓
//	    [layout] package (cards with positions and attempts)
//	         ↓
//	    [render] package (SVG/JSON/DOT/PNG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cardmap/pkg/pipeline"
//	    "github.com/matzehuels/cardmap/pkg/vault"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(),
//	    vault.Source{Root: "~/notes"},
//	    pipeline.Options{Width: 1000, Height: 800, Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// # Errors
//
// Failures carry a code from [errors]. Invalid input (bounds, labels,
// settings) is reported before any placement runs; a crowded panel is never
// an error, only degraded cards.
//
// [placement]: github.com/matzehuels/cardmap/pkg/placement
// [panel]: github.com/matzehuels/cardmap/pkg/panel
// [vault]: github.com/matzehuels/cardmap/pkg/vault
// [layout]: github.com/matzehuels/cardmap/pkg/layout
// [render]: github.com/matzehuels/cardmap/pkg/render
// [pipeline]: github.com/matzehuels/cardmap/pkg/pipeline
// [cache]: github.com/matzehuels/cardmap/pkg/cache
// [config]: github.com/matzehuels/cardmap/pkg/config
// [session]: github.com/matzehuels/cardmap/pkg/session
// [server]: github.com/matzehuels/cardmap/pkg/server
// [errors]: github.com/matzehuels/cardmap/pkg/errors
package pkg
