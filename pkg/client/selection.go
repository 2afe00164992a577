package client

import "sort"

// Selection is the set of share paths queued for a bundle download. Paths
// are unique; adding an existing path is a no-op.
type Selection struct {
	members map[string]bool
}

func NewSelection(paths ...string) *Selection {
	s := &Selection{members: make(map[string]bool)}
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

func (s *Selection) Add(path string) {
	s.members[path] = true
}

func (s *Selection) Remove(path string) {
	delete(s.members, path)
}

// Toggle flips membership and reports whether the path is now selected.
func (s *Selection) Toggle(path string) bool {
	if s.members[path] {
		delete(s.members, path)
		return false
	}
	s.members[path] = true
	return true
}

func (s *Selection) Contains(path string) bool {
	return s.members[path]
}

func (s *Selection) Len() int {
	return len(s.members)
}

func (s *Selection) Clear() {
	s.members = make(map[string]bool)
}

// Paths returns the members in sorted order so requests built from a
// selection are deterministic.
func (s *Selection) Paths() []string {
	paths := make([]string, 0, len(s.members))
	for p := range s.members {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
