// Package diff decomposes multi-file unified diffs and maps new-file
// line numbers back to diff structure.
//
// It provides the three building blocks the review pipeline relies on:
// splitting a raw diff into per-file segments (Split), parsing a
// segment's @@ hunks into a new-file line map (Parse), and deriving a
// per-file validation index used to prove that model feedback
// references a real added or context line of the diff
// (BuildValidationIndex).
//
// New-file line numbers are assigned only to added and context lines,
// monotonically increasing from each hunk's new-file start. Removed
// lines never occupy a new-file line number. Every downstream
// accept/reject decision depends on that counting rule being exact.
package diff
