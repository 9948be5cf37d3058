package ecs

// SparseSet is a cache-friendly storage for components keyed by entity id.
// Values are stored as `any`; the typed accessors in generics.go recover the
// concrete pointer type.
type SparseSet struct {
	denseEntities []int
	denseValues   []any
	sparse        []int
}

// Has returns true if the entity id exists in the set.
func (s *SparseSet) Has(id int) bool {
	if s == nil || id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == id
}

// Get returns the component for id, or nil.
func (s *SparseSet) Get(id int) any {
	if !s.Has(id) {
		return nil
	}
	return s.denseValues[s.sparse[id-1]]
}

// Set inserts or replaces the component for id.
func (s *SparseSet) Set(id int, value any) {
	if s == nil || id <= 0 {
		return
	}
	if s.Has(id) {
		s.denseValues[s.sparse[id-1]] = value
		return
	}
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[id-1] = len(s.denseEntities)
	s.denseEntities = append(s.denseEntities, id)
	s.denseValues = append(s.denseValues, value)
}

// Remove deletes the component for id using swap-remove.
func (s *SparseSet) Remove(id int) bool {
	if !s.Has(id) {
		return false
	}
	idx := s.sparse[id-1]
	last := len(s.denseEntities) - 1
	if idx != last {
		movedID := s.denseEntities[last]
		s.denseEntities[idx] = movedID
		s.denseValues[idx] = s.denseValues[last]
		s.sparse[movedID-1] = idx
	}
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[id-1] = -1
	return true
}

// Len returns the number of stored components.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// ids returns a snapshot of stored entity ids, safe to iterate while the set
// is mutated by callbacks.
func (s *SparseSet) ids() []int {
	if s == nil || len(s.denseEntities) == 0 {
		return nil
	}
	out := make([]int, len(s.denseEntities))
	copy(out, s.denseEntities)
	return out
}
