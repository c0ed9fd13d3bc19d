// Package transform prepares a family graph for generational layout.
//
// Two transformations run before ordering and coordinate assignment:
//
//   - [BreakCycles] removes back edges introduced by data-entry errors so
//     the ranking step always terminates.
//   - [AssignRanks] computes generational ranks via longest-path layering,
//     placing root ancestors at rank 0 and each descendant strictly below
//     every ancestor feeding into it.
//
// Both transformations mutate the graph in place.
package transform
