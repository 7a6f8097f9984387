package util

// Set is an unordered set of comparable values.
type Set[T comparable] struct {
	set map[T]struct{}
}

func NewSet[T comparable](vals ...T) *Set[T] {
	s := &Set[T]{make(map[T]struct{}, len(vals))}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (m *Set[T]) Has(val T) bool {
	_, ok := m.set[val]
	return ok
}

// Add inserts val, and reports whether it was not already present.
func (m *Set[T]) Add(val T) bool {
	if m.Has(val) {
		return false
	}
	m.set[val] = struct{}{}
	return true
}

func (m *Set[T]) Len() int {
	return len(m.set)
}

// Tern is a ternary expression: Tern(cond, a, b) is a if cond, else b.
func Tern[T any](cond bool, a T, b T) T {
	if cond {
		return a
	}
	return b
}
