package catalog

import (
	"slices"
	"sync"
)

// Set is a registry of named entries. Get hands out a stable pointer for a
// name even before the entry is defined, so data files can refer to things
// declared further down or in another file.
type Set[T any] struct {
	m       sync.Mutex
	entries map[string]*T
	defined map[string]bool
}

func NewSet[T any]() *Set[T] {
	return &Set[T]{
		entries: make(map[string]*T),
		defined: make(map[string]bool),
	}
}

// Get returns the entry for name, creating an empty placeholder if needed.
func (s *Set[T]) Get(name string) *T {
	s.m.Lock()
	defer s.m.Unlock()
	return s.get(name)
}

func (s *Set[T]) get(name string) *T {
	if e, ok := s.entries[name]; ok {
		return e
	}
	e := new(T)
	s.entries[name] = e
	return e
}

// Define returns the entry for name and marks it as defined.
func (s *Set[T]) Define(name string) *T {
	s.m.Lock()
	defer s.m.Unlock()
	s.defined[name] = true
	return s.get(name)
}

// Find returns a defined entry. Placeholders created by Get are not found.
func (s *Set[T]) Find(name string) (*T, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if !s.defined[name] {
		return nil, false
	}
	return s.entries[name], true
}

// Has reports whether name has been defined.
func (s *Set[T]) Has(name string) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.defined[name]
}

// Names returns the defined names in sorted order.
func (s *Set[T]) Names() []string {
	s.m.Lock()
	defer s.m.Unlock()
	names := make([]string, 0, len(s.defined))
	for name := range s.defined {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of defined entries.
func (s *Set[T]) Len() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.defined)
}

// Undefined returns names that were referenced but never defined, sorted.
func (s *Set[T]) Undefined() []string {
	s.m.Lock()
	defer s.m.Unlock()
	var names []string
	for name := range s.entries {
		if !s.defined[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
