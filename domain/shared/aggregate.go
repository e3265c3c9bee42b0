package shared

// AggregateRoot is the only externally addressable object of a consistency
// boundary. All mutation of the cluster goes through its methods, and it is
// loaded and stored as one unit.
type AggregateRoot interface {
	// ID global identity of the aggregate
	ID() string

	// Version optimistic-lock stamp, advanced by the repository on every successful Update
	Version() int
}

// Entity has a stable identity inside its aggregate; equality is by identity.
type Entity interface {
	ID() string
}

// SameIdentity reports whether two entities share an identity.
func SameIdentity(a, b Entity) bool {
	return a.ID() != "" && a.ID() == b.ID()
}
