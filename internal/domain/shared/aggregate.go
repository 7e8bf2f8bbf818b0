package shared

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	GetPublicID() string
}

// BaseAggregateRoot provides common fields for aggregate roots.
// PublicID is the sequentially allocated external identifier (e.g. "P-0042")
// and never changes once assigned.
type BaseAggregateRoot struct {
	BaseEntity
	PublicID string `json:"public_id"`
	Version  int    `json:"version"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// GetPublicID returns the external identifier
func (a *BaseAggregateRoot) GetPublicID() string {
	return a.PublicID
}

// NewBaseAggregateRoot creates a new base aggregate root labelled with publicID
func NewBaseAggregateRoot(publicID string) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		PublicID:   publicID,
		Version:    1,
	}
}
