package components

// Position is a cell coordinate on the particle grid.
type Position struct {
	X, Y int
}
