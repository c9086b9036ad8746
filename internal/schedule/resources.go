package schedule

import (
	"fmt"
	"slices"
	"strings"
)

// AddResource registers r. Names are unique and must not be blank.
func (s *Store) AddResource(r Resource) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidResource)
	}
	if _, ok := s.resources[r.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateResource, r.Name)
	}
	c := r.clone()
	s.resources[r.Name] = &c
	s.resourceOrder = append(s.resourceOrder, r.Name)
	return nil
}

// UpdateResource replaces the resource called name with r. A rename is
// carried into every task assignment.
func (s *Store) UpdateResource(name string, r Resource) error {
	cur, ok := s.resources[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrResourceNotFound, name)
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidResource)
	}
	if r.Name != name {
		if _, taken := s.resources[r.Name]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicateResource, r.Name)
		}
		delete(s.resources, name)
		s.resourceOrder[slices.Index(s.resourceOrder, name)] = r.Name
		for _, t := range s.tasks {
			for i := range t.Resources {
				if t.Resources[i].Name == name {
					t.Resources[i].Name = r.Name
				}
			}
		}
	}
	*cur = r.clone()
	s.resources[r.Name] = cur
	return nil
}

// DeleteResource removes the resource and every assignment of it.
func (s *Store) DeleteResource(name string) error {
	if _, ok := s.resources[name]; !ok {
		return fmt.Errorf("%w: %q", ErrResourceNotFound, name)
	}
	delete(s.resources, name)
	s.resourceOrder = slices.DeleteFunc(s.resourceOrder, func(n string) bool { return n == name })
	for _, t := range s.tasks {
		t.Resources = slices.DeleteFunc(t.Resources, func(a Assignment) bool { return a.Name == name })
	}
	return nil
}

// GetResource returns a copy of the named resource.
func (s *Store) GetResource(name string) (Resource, bool) {
	r, ok := s.resources[name]
	if !ok {
		return Resource{}, false
	}
	return r.clone(), true
}

// Resources returns copies of all resources in the order they were added.
func (s *Store) Resources() []Resource {
	out := make([]Resource, 0, len(s.resourceOrder))
	for _, name := range s.resourceOrder {
		out = append(out, s.resources[name].clone())
	}
	return out
}
