// Package deck defines the slot model shared by every pipeline layer and
// loads deck files into it.
//
// A deck file names a commander and an ordered card list, each carrying a
// raw primitive token list, plus optional override patches keyed by oracle
// id. Loading assigns stable slot ids: the commander slot is "c00" and deck
// slots are "d001", "d002", ... in input order. Plain lexicographic ordering
// of slot ids therefore sorts the commander first and deck slots by input
// position, which every downstream layer relies on.
//
// The loader is a boundary: strict YAML decoding and required-field
// validation happen here, so the analytic core never re-checks shapes.
// Non-playable slots pass through with their status intact; the graph
// builder excludes them, not the loader.
package deck
