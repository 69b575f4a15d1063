package parser

// funcScope tracks slot allocation for one function body (or, for the
// isGlobal root, the absence of slot allocation — top-level bindings are
// always dynamic Global properties, never environment slots, matching how
// internal/object.Context runs top-level code with Locals == nil).
type funcScope struct {
	parent        *funcScope
	names         map[string]int
	next          int
	strict        bool
	usesArguments bool
	isGlobal      bool
}

func newGlobalScope() *funcScope {
	return &funcScope{isGlobal: true}
}

func newFuncScope(parent *funcScope, strict bool) *funcScope {
	return &funcScope{parent: parent, names: map[string]int{}, next: 3, strict: strict}
}

// declare assigns name a slot if it doesn't already have one (no-op at
// global scope, where names are resolved dynamically at runtime instead).
func (s *funcScope) declare(name string) int {
	if s.isGlobal {
		return -1
	}
	if slot, ok := s.names[name]; ok {
		return slot
	}
	slot := s.next
	s.next++
	s.names[name] = slot
	return slot
}
