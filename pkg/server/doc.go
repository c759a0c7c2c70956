// Package server exposes the treemap pipeline, item details and the panel
// controller over HTTP.
//
// # Routes
//
// All routes live under /api/v1:
//
//	GET    /treemap            layout as JSON (width, height, group_by, padding, q, category)
//	GET    /treemap.svg        layout as SVG (same parameters, plus popups)
//	GET    /items              items matching q and category
//	GET    /items/{id}         item detail
//	PUT    /items              upsert items (JSON array)
//	GET    /categories         distinct sectors
//	GET    /metrics            panel metrics
//	PUT    /metrics            replace panel metrics and re-rank
//	GET    /panels             allocation (viewport, variant)
//	POST   /panels/override    {"panel": "claims"}
//	DELETE /panels/override
//	POST   /panels/pin         {"panel": "claims"}
//	DELETE /panels/pin
//	POST   /panels/hover       {"panel": "claims"}
//	DELETE /panels/hover
//
// Errors are returned as {"code": "...", "message": "..."} with the status
// derived from the error code. Every response carries an X-Request-ID
// header.
package server
