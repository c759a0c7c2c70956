// Package panels decides which dashboard panel gets the most room.
//
// Each of the three workflow panels (actions, monitoring, claims) is scored
// from a handful of operational counters. The highest score becomes the hero
// panel and receives the widest column for the current viewport; the other
// panels share what is left.
//
// [Rank] and [Allocate] are pure functions. [Controller] wraps them with the
// interactive behaviour of the dashboard: periodic recompute from a
// [MetricsSource], rotation frozen while a panel is hovered or pinned, and a
// manual override that wins until reset.
package panels
