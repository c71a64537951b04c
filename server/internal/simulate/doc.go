// Package simulate produces the randomized figures the API reports in place
// of real measurements: system resource usage, daily quality trends and
// per-execution record counts.
//
// Every draw goes through a Source so callers (and tests) choose the
// randomness. Integer ranges are inclusive on both ends.
package simulate
