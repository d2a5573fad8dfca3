package ecs

import "github.com/milk9111/arcadecar/ecs/component"

// Query returns the entities that have every listed component, in the
// storage order of the smallest set.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(ids))
	for _, id := range ids {
		set := w.stores[id]
		if set.Len() == 0 {
			return nil
		}
		sets = append(sets, set)
	}
	// iterate smaller set
	smallest := 0
	for i, set := range sets {
		if set.Len() < sets[smallest].Len() {
			smallest = i
		}
	}
	out := make([]Entity, 0, sets[smallest].Len())
	for _, e := range sets[smallest].Entities() {
		ok := true
		for i, set := range sets {
			if i != smallest && !set.Has(e) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first entity with all listed components.
func (w *World) First(ids ...component.ComponentID) (Entity, bool) {
	ents := w.Query(ids...)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}
