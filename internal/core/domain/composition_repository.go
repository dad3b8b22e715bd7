package domain

import "context"

// CompositionRepository is the abstraction for any kind of database intended
// to persist Compositions.
type CompositionRepository interface {
	// AddComposition persists a new composition and returns its id.
	AddComposition(ctx context.Context, composition *Composition) (int64, error)
	// GetCompositionByID returns the composition with the given id.
	GetCompositionByID(ctx context.Context, id int64) (*Composition, error)
	// GetCompositionsForUser returns all the compositions owned by the given
	// address.
	GetCompositionsForUser(ctx context.Context, userAddress string) ([]*Composition, error)
	// UpdateComposition allows to commit multiple changes to the same
	// composition in a transactional way.
	UpdateComposition(
		ctx context.Context,
		id int64,
		updateFn func(c *Composition) (*Composition, error),
	) error
}
