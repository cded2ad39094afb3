package components

// Emitter periodically inserts particles of Type at its entity's Position.
type Emitter struct {
	Type     string
	Interval int     // ticks between attempts, at least 1
	Chance   float64 // probability an attempt inserts, 0..1
	Emitted  int     // particles inserted so far
}
