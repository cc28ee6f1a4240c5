package testutils

// Dense components.

type Health struct {
	Value int `json:"value"`
}

func (Health) Name() string { return "Health" }

type Position struct{ X, Y int }

func (Position) Name() string { return "Position" }

type Velocity struct{ X, Y int }

func (Velocity) Name() string { return "Velocity" }

type Level struct{ Value int }

func (Level) Name() string { return "Level" }

// Hitpoints is a non-struct component, compared directly by ordered predicates.
type Hitpoints int32

func (Hitpoints) Name() string { return "Hitpoints" }

// Sparse components.

type Poison struct {
	Damage int `json:"damage"`
}

func (Poison) Name() string { return "Poison" }

func (Poison) SparseStorage() {}

type SparseHitpoints int32

func (SparseHitpoints) Name() string { return "SparseHitpoints" }

func (SparseHitpoints) SparseStorage() {}

// Invalid components.

type Nameless struct{ Value int }

func (Nameless) Name() string { return "" }

// HealthAsSparse reuses Health's name with a sparse layout.
type HealthAsSparse struct{ Value int }

func (HealthAsSparse) Name() string { return "Health" }

func (HealthAsSparse) SparseStorage() {}
