package set

// Set is a set of values that remembers insertion order.
// Iteration order is deterministic, which keeps event dispatch reproducible.
//
// The zero value is an empty set ready to use.
type Set[T comparable] struct {
	values []T
	index  map[T]int
}

// Insert adds the value to the end of the set. It returns false
// if the value was already present.
func (s *Set[T]) Insert(value T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}

	if _, exists := s.index[value]; exists {
		return false
	}

	s.index[value] = len(s.values)
	s.values = append(s.values, value)
	return true
}

// Remove deletes the value while keeping the order of the remaining values.
func (s *Set[T]) Remove(value T) bool {
	idx, exists := s.index[value]
	if !exists {
		return false
	}

	delete(s.index, value)

	copy(s.values[idx:], s.values[idx+1:])
	s.values = s.values[:len(s.values)-1]

	for i := idx; i < len(s.values); i++ {
		s.index[s.values[i]] = i
	}

	return true
}

func (s *Set[T]) Has(value T) bool {
	_, exists := s.index[value]
	return exists
}

func (s *Set[T]) Len() int {
	return len(s.values)
}

// Values returns the values in insertion order. The slice is owned by the set
// and must not be modified or retained across mutations.
func (s *Set[T]) Values() []T {
	return s.values
}

// Retain keeps only the values for which keep returns true. keep is called once
// per value in insertion order. It must not mutate the set.
func (s *Set[T]) Retain(keep func(value T) bool) {
	n := 0
	for _, value := range s.values {
		if keep(value) {
			s.values[n] = value
			s.index[value] = n
			n++
		} else {
			delete(s.index, value)
		}
	}

	clear(s.values[n:])
	s.values = s.values[:n]
}

// Clear removes all values but keeps the allocated memory for reuse.
func (s *Set[T]) Clear() {
	clear(s.values)
	s.values = s.values[:0]
	clear(s.index)
}
