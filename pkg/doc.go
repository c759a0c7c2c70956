// Package pkg provides the core libraries for popdyn, the layout engine
// behind the Population Dynamics governance dashboard.
//
// # Overview
//
// popdyn turns weighted indicators into a squarified treemap and decides
// which of the dashboard's panels gets the wide "hero" column. The pkg
// directory is organized into these areas:
//
//  1. [treemap] and [panels] - Domain logic (layout engine, panel priority)
//  2. [filter], [io], [source] and [store] - Data access (search, dataset files, remote datasets, repositories)
//  3. [cache] and [observability] - Infrastructure (layout and render caching, hooks)
//  4. [pipeline] - Orchestration (filter → layout → render)
//  5. [render] - Output (SVG, JSON, PNG, PDF, terminal text, DOT)
//  6. [server] - HTTP API
//
// # Architecture
//
// The typical data flow through popdyn:
//
//	Dataset file / URL / store
//	         ↓
//	    [filter] package (query and category selection)
//	         ↓
//	    [treemap] package (grouping + squarified layout)
//	         ↓
//	    [render] packages (visualization)
//	         ↓
//	    SVG/PDF/PNG/JSON/text output
//
// In parallel, [panels] ranks the action, monitoring and claims panels from
// the dataset's operational metrics and maps the ranking onto a width table.
//
// # Quick Start
//
// Lay out a dataset and render it as SVG:
//
//	import (
//	    "github.com/matzehuels/popdyn/pkg/io"
//	    "github.com/matzehuels/popdyn/pkg/render/treemap/sink"
//	    "github.com/matzehuels/popdyn/pkg/treemap"
//	)
//
//	ds, _ := io.ImportFile("indicators.json")
//	res, _ := treemap.Build(ds.Items, 800, 600, treemap.GroupBySector)
//	svg := sink.RenderSVG(res, sink.WithPopups())
//
// Or let the pipeline handle filtering, caching and every output format:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, ds.Items, pipeline.Options{
//	    Width:   800,
//	    Height:  600,
//	    GroupBy: "performance",
//	    Formats: []string{"svg", "json"},
//	})
//
// # Subpackages
//
// See individual package documentation for details:
//   - [treemap]: Squarified treemap layout and grouping modes
//   - [panels]: Panel scores, width tables and the rotation controller
//   - [pipeline]: Options, caching runner and renderers
//   - [server]: chi-based HTTP API
//   - [store]: Memory, SQLite and MongoDB repositories
package pkg
