package ecs

// entityStore tracks entity generations and free ids. Slot ids start at 1.
type entityStore struct {
	gen  []generation
	free []entityID
}

func (s *entityStore) create() Entity {
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		id = entityID(len(s.gen))
	}
	return makeEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gen[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == e.generation()
}

func (s *entityStore) alive() []Entity {
	free := make(map[entityID]bool, len(s.free))
	for _, id := range s.free {
		free[id] = true
	}
	out := make([]Entity, 0, len(s.gen)-len(s.free))
	for i, g := range s.gen {
		id := entityID(i + 1)
		if !free[id] {
			out = append(out, makeEntity(id, g))
		}
	}
	return out
}
