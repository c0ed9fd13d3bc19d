// Package layout positions a family graph on a generational grid.
//
// The pipeline follows the classic layered approach: the family graph is
// converted into a ranked DAG (partners above their couple unit, children
// below it), cycles in bad data are broken, generations become ranks, each
// rank is ordered with a barycentric heuristic to reduce edge crossings, and
// finally every node receives a concrete footprint and center coordinate.
//
// The result is deterministic: the same graph always produces the same
// layout, so clients can diff successive layouts cheaply.
package layout
