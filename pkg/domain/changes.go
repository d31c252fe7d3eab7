package domain

// Action identifies the kind of mutation captured in a Change.
type Action string

// Canonical change actions recorded by transactions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change records a single entity mutation applied within a transaction.
// Before and After hold clones of the affected record where applicable.
type Change struct {
	Entity EntityType `json:"entity"`
	Action Action     `json:"action"`
	Before any        `json:"before,omitempty"`
	After  any        `json:"after,omitempty"`
}
