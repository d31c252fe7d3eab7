package domain

import "fmt"

// ErrNotFound reports a missing record for update, delete, or status rewrite
// operations. Display-only lookups never return it; they degrade to sentinel
// names instead.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
