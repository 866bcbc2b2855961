package domain

// Represents a population region that may be covered by one or more
// candidate sites. Population is the demand weight used by the solver
// objective: a region counts fully once any covering site is built.
type Region struct {
	ID         int
	Population int64
}
