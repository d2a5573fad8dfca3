package ecs

import "github.com/milk9111/arcadecar/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	v := value
	return w.AddComponent(e, handle.Kind().ID(), &v)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind().ID())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind().ID())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	p, ok := GetPtr(w, e, handle)
	if !ok {
		return zero, false
	}
	return *p, true
}

// GetPtr returns the stored component so callers can update it in place.
func GetPtr[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	value, ok := w.GetComponent(e, handle.Kind().ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok
}

// ForEach calls fn for every entity holding the component.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(handle.Kind().ID()) {
		if p, ok := GetPtr(w, e, handle); ok {
			fn(e, p)
		}
	}
}

// ForEach2 calls fn for every entity holding both components.
func ForEach2[A, B any](w *World, a component.ComponentHandle[A], b component.ComponentHandle[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(a.Kind().ID(), b.Kind().ID()) {
		pa, okA := GetPtr(w, e, a)
		pb, okB := GetPtr(w, e, b)
		if okA && okB {
			fn(e, pa, pb)
		}
	}
}
