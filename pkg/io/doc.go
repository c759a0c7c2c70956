// Package io reads and writes popdyn datasets.
//
// # Overview
//
// A dataset is the input of every popdyn command: the weighted indicators to
// tile plus the operational counters the panel heuristics score. Datasets
// can be written in JSON, TOML or YAML; the format is taken from the file
// extension.
//
// # JSON Format
//
//	{
//	  "items": [
//	    {"id": "births", "name": "Birth rate", "value": 92, "target": 100,
//	     "weight": 6, "sector": "Health"}
//	  ],
//	  "metrics": {
//	    "pending_approvals": 3, "overdue_approvals": 1,
//	    "critical_alerts": 2, "escalations": 0, "open_claims": 4,
//	    "dei_score": 76.5
//	  }
//	}
//
// A bare JSON array of items is accepted as a dataset without metrics.
//
// # TOML Format
//
//	[metrics]
//	pending_approvals = 3
//	dei_score = 76.5
//
//	[[items]]
//	id = "births"
//	weight = 6
//	sector = "Health"
//
// # Validation
//
// Every item needs a unique, non-empty ID without path separators or
// control characters, and a finite non-negative weight. Invalid datasets
// fail with an INVALID_DATASET error naming the offending item.
package io
