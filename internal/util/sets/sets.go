package sets

// Set is a simple generic hash set for comparable keys, used for the
// de-duplication work during ingestion and link verification: parameter
// names, membership references, seen parameter-list kinds, written pages.
// Intentionally minimal; nothing here removes or copies, entries only
// accumulate within one pass.
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}
