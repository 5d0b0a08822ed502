package model

// Lifecycle replaces boolean soft-delete flags for catalog records.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleRetired Lifecycle = "retired"
)

func (l Lifecycle) IsActive() bool {
	return l == LifecycleActive
}
