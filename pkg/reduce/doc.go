// Package reduce collapses a discovery log into the newest relation per key.
//
// Three views are derived from the same records:
//
//   - [LatestParents]: the newest PARENT-role row per reporting node, read
//     as child = Source, parent = Address.
//   - [LatestNeighbors]: the newest row per unordered address pair,
//     regardless of role.
//   - [ParentCandidates]: the newest row per Address, regardless of role,
//     read as child = Address, parent = Parent. It fills gaps in the
//     role-based tree through [WithFallback].
//
// Every view is one linear pass over the records with a key to best-record
// table. A record replaces the current best only when it is strictly newer,
// so equal timestamps keep the row that appeared first in the input.
package reduce
