package ecs

import "github.com/milk9111/spikefall/ecs/component"

// Add inserts or replaces a component on a live entity.
func Add[T any](w *World, e Entity, k component.ComponentKind[T], value *T) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if value == nil {
		return component.ErrNilComponent
	}
	w.store(k.ID()).Set(int(e.id()), value)
	return nil
}

// Get returns the component pointer for a live entity.
func Get[T any](w *World, e Entity, k component.ComponentKind[T]) (*T, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	v := w.store(k.ID()).Get(int(e.id()))
	if v == nil {
		return nil, false
	}
	cast, ok := v.(*T)
	return cast, ok
}

// Has reports whether a live entity carries the component.
func Has[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.store(k.ID()).Has(int(e.id()))
}

// Remove drops a component from an entity.
func Remove[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.store(k.ID()).Remove(int(e.id()))
}

// First returns any one entity carrying the component.
func First[T any](w *World, k component.ComponentKind[T]) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	s := w.store(k.ID())
	for _, id := range s.ids() {
		e := makeEntity(entityID(id), w.entities.gen[id-1])
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return 0, false
}

// Count returns the number of live entities carrying the component.
func Count[T any](w *World, k component.ComponentKind[T]) int {
	if w == nil {
		return 0
	}
	return w.store(k.ID()).Len()
}

// ForEach visits every live entity carrying the component. The callback may
// add or destroy entities; the iteration works over a snapshot.
func ForEach[T any](w *World, k component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	s := w.store(k.ID())
	for _, id := range s.ids() {
		e := makeEntity(entityID(id), w.entities.gen[id-1])
		if !w.entities.isAlive(e) {
			continue
		}
		if v, ok := s.Get(id).(*T); ok && v != nil {
			fn(e, v)
		}
	}
}

// ForEach2 visits every live entity carrying both components.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	ForEach(w, ka, func(e Entity, a *A) {
		if b, ok := Get(w, e, kb); ok {
			fn(e, a, b)
		}
	})
}

// ForEach3 visits every live entity carrying all three components.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	ForEach(w, ka, func(e Entity, a *A) {
		b, ok := Get(w, e, kb)
		if !ok {
			return
		}
		if c, ok := Get(w, e, kc); ok {
			fn(e, a, b, c)
		}
	})
}
