package domain

// Represents a candidate build site (e.g. a tower location).
// A Site has a build cost and the set of region ids it would cover.
// Sites are planning input only; build decisions live in Solution.
type Site struct {
	ID     int
	Cost   float64
	Covers []int
}
