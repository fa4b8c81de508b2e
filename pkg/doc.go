// Package pkg provides the libraries behind gdpmap, a zoomable treemap of
// world GDP.
//
// # Overview
//
// gdpmap draws regions and countries as nested rectangles sized by GDP and
// colored by annual growth. Every rectangle carries labels fitted to its
// size using font metrics measured ahead of time, so layout never needs a
// font rasterizer. The pkg directory is organized into four areas:
//
//  1. Metrics: [fontmetrics] and [fonts] measure a font once into settings
//  2. Layout: [hierarchy], [treemap] and [label] turn data into a frame
//  3. Output: [render], [colorscale], [format] and [tooltip]
//  4. Plumbing: [pipeline], [cache], [config], [httputil], [server] and friends
//
// # Architecture
//
// The data flow of one view:
//
//	World Bank CSV (or ZIP) downloads
//	         ↓
//	    [hierarchy] package (world → region → country tree)
//	         ↓
//	    [treemap] package (squarified layout + fitted labels via [label])
//	         ↓
//	    [render] package (SVG, PDF or JSON)
//
// # Quick Start
//
//	font := fonts.Default()
//	m, _ := fontmetrics.NewOpenTypeMeasurerFromData(font.Data)
//	defer m.Close()
//	settings, _ := fontmetrics.Build(fontmetrics.DefaultAlphabet, fontmetrics.DefaultLadder,
//	    fontmetrics.DefaultStyle, m)
//
//	tree, _ := hierarchy.LoadWorldBank(gdp, growth, meta, "2023")
//	frame, _ := treemap.Pass(tree, treemap.Zoomed("ECS"), 960, label.New(settings))
//	svg := render.SVG(frame, render.WithFont(font))
//
// [pipeline.Runner] does the same with caching at every stage, and is what
// the CLI and the HTTP [server] use.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/treemap/...    # Specific package
//	go test -run Example ./...   # Examples only
package pkg
