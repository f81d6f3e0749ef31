package domain

import "github.com/google/uuid"

// Referable is implemented by entities a Reservation can point at.
type Referable interface {
	RefID() uuid.UUID
	DisplayName() string
}

// Ref is either a bare identifier or an expanded entity.
// The zero Ref refers to nothing.
type Ref[T Referable] struct {
	id       uuid.UUID
	expanded *T
}

// RefTo returns a bare-identifier reference.
func RefTo[T Referable](id uuid.UUID) Ref[T] {
	return Ref[T]{id: id}
}

// Expanded returns a reference carrying the full entity.
func Expanded[T Referable](v T) Ref[T] {
	return Ref[T]{id: v.RefID(), expanded: &v}
}

// ID returns the referenced identifier in either form.
func (r Ref[T]) ID() uuid.UUID { return r.id }

// Value returns the expanded entity, if present.
func (r Ref[T]) Value() (T, bool) {
	if r.expanded == nil {
		var zero T
		return zero, false
	}
	return *r.expanded, true
}

// IsExpanded reports whether the reference carries the full entity.
func (r Ref[T]) IsExpanded() bool { return r.expanded != nil }

// DisplayName returns the entity's display name. A bare reference is
// resolved against loaded; when no match exists the identifier is returned.
func (r Ref[T]) DisplayName(loaded []T) string {
	if r.expanded != nil {
		return (*r.expanded).DisplayName()
	}
	for _, v := range loaded {
		if v.RefID() == r.id {
			return v.DisplayName()
		}
	}
	return r.id.String()
}

// Resolve expands r using loaded. It returns r unchanged when already
// expanded or when no match is found.
func (r Ref[T]) Resolve(loaded map[uuid.UUID]T) Ref[T] {
	if r.expanded != nil {
		return r
	}
	if v, ok := loaded[r.id]; ok {
		return Expanded(v)
	}
	return r
}
