// Package classify maps one raw issue to a platform label and a status
// label.
//
// Platform detection evaluates an explicit, ordered rule list — never a
// map, whose iteration order would make classification irreproducible.
// Rules are ordered most-specific-first so compound platform names win
// over single tokens they contain ("webos" before "web", "android tv"
// before "android"). The rule order is part of the contract and is pinned
// by tests; changing it changes classification results.
//
// A record that matches no rule is Unclassified — an expected outcome.
// A record whose status is outside the recognized set is excluded from
// aggregation entirely, which is a different bucket than Unclassified.
package classify
