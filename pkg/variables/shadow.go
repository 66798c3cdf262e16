package variables

// Shadow state management. Pushing a state diverts subsequent variable
// writes and seen-counter increments away from the live values; popping
// restores them. Levels nest and must pop in exact reverse order of push.
// The level argument is a reentrancy tag owned by the caller, not a
// semantic parameter: it lets the store detect unbalanced push/pop pairs.

// ShadowLevel returns the current shadow level (0 means live state).
func (s *Store) ShadowLevel() int { return s.level }

// PushState enters a new shadow level. Variable writes performed while the
// level is active are reverted by the matching PopState.
func (s *Store) PushState(level int) {
	if level != s.level+1 {
		s.logger.Warn("shadow push out of sequence", "got", level, "want", s.level+1)
	}
	s.level = level
}

// PopState leaves the given shadow level, restoring every variable written
// while it was active.
func (s *Store) PopState(level int) {
	if level != s.level {
		s.logger.Warn("shadow pop out of sequence", "got", level, "want", s.level)
	}
	hooks := s.popHooks[s.level]
	delete(s.popHooks, s.level)
	// Restore in reverse write order.
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	if s.level > 0 {
		s.level--
	}
}

func (s *Store) registerOnPopState(fn func()) {
	if s.level == 0 {
		return
	}
	s.popHooks[s.level] = append(s.popHooks[s.level], fn)
}

// PushSeen shadows the seen counters and fallback flags: a copy of the
// current top is pushed, so increments and flag changes stay speculative.
func (s *Store) PushSeen() {
	top := s.seen[len(s.seen)-1]
	seenCopy := make(map[string]int, len(top))
	for k, v := range top {
		seenCopy[k] = v
	}
	s.seen = append(s.seen, seenCopy)

	fbTop := s.fallback[len(s.fallback)-1]
	fbCopy := make(map[string]bool, len(fbTop))
	for k, v := range fbTop {
		fbCopy[k] = v
	}
	s.fallback = append(s.fallback, fbCopy)
}

// PopSeen discards the topmost speculative copy of the counters and flags.
func (s *Store) PopSeen() {
	if len(s.seen) <= 1 {
		s.logger.Warn("seen counter pop without matching push")
		return
	}
	s.seen = s.seen[:len(s.seen)-1]
	s.fallback = s.fallback[:len(s.fallback)-1]
}

// SeenCounter returns how often the given object was executed.
func (s *Store) SeenCounter(id string) int {
	return s.seen[len(s.seen)-1][id]
}

// SetSeenCounter overwrites the counter for an object.
func (s *Store) SetSeenCounter(id string, value int) int {
	s.seen[len(s.seen)-1][id] = value
	return value
}

// IncrementSeenCounter adds one to the counter for an object and returns
// the new value.
func (s *Store) IncrementSeenCounter(id string) int {
	top := s.seen[len(s.seen)-1]
	top[id]++
	return top[id]
}

// ResetVisited clears all seen counters on every level.
func (s *Store) ResetVisited() {
	for i := range s.seen {
		s.seen[i] = map[string]int{}
	}
}

// Fallback reports whether forced condition evaluation is active for an
// object. While set, the object's condition edges evaluate true.
func (s *Store) Fallback(id string) bool {
	return s.fallback[len(s.fallback)-1][id]
}

// SetFallbackEvaluation toggles forced condition evaluation for an object.
// The flag is scoped like the seen counters: setting it under shadow is
// reverted by the matching PopSeen.
func (s *Store) SetFallbackEvaluation(id string, value bool) {
	top := s.fallback[len(s.fallback)-1]
	if value {
		top[id] = true
	} else {
		delete(top, id)
	}
}
