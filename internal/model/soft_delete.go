package model

import "time"

// SoftDeletable is implemented by author-time entities that are never hard-deleted,
// so historical submissions keep resolving the pages, questions and options they reference.
type SoftDeletable interface {
	Deleted() bool
	MarkDeleted(at time.Time)
}

// SoftDelete is embedded by every SoftDeletable entity.
type SoftDelete struct {
	IsDeleted bool       `json:"isDeleted,omitempty" bson:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
}

// Deleted reports whether the entity has been soft-deleted
func (s *SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// MarkDeleted flags the entity as deleted. Calling it twice keeps the first timestamp.
func (s *SoftDelete) MarkDeleted(at time.Time) {
	if s.IsDeleted {
		return
	}
	s.IsDeleted = true
	s.DeletedAt = &at
}

// Active returns the entities that have not been soft-deleted, preserving order.
func Active[T any, P interface {
	*T
	SoftDeletable
}](items []T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if !P(&items[i]).Deleted() {
			out = append(out, items[i])
		}
	}
	return out
}
