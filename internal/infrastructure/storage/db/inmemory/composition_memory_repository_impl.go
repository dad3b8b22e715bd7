package inmemory

import (
	"context"
	"strings"
	"sync"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
)

// CompositionRepositoryImpl represents an in memory storage for compositions.
type CompositionRepositoryImpl struct {
	compositions map[int64]*domain.Composition
	nextID       int64
	lock         *sync.RWMutex
}

// NewCompositionRepositoryImpl returns a new empty CompositionRepositoryImpl.
func NewCompositionRepositoryImpl() *CompositionRepositoryImpl {
	return &CompositionRepositoryImpl{
		compositions: map[int64]*domain.Composition{},
		nextID:       1,
		lock:         &sync.RWMutex{},
	}
}

func (r *CompositionRepositoryImpl) AddComposition(
	_ context.Context, composition *domain.Composition,
) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	id := r.nextID
	r.nextID++

	composition.ID = id
	clone := *composition
	r.compositions[id] = &clone
	return id, nil
}

func (r *CompositionRepositoryImpl) GetCompositionByID(
	_ context.Context, id int64,
) (*domain.Composition, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getComposition(id)
}

func (r *CompositionRepositoryImpl) GetCompositionsForUser(
	_ context.Context, userAddress string,
) ([]*domain.Composition, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	compositions := make([]*domain.Composition, 0)
	for _, c := range r.compositions {
		if strings.EqualFold(c.UserAddress, userAddress) {
			clone := *c
			compositions = append(compositions, &clone)
		}
	}
	return compositions, nil
}

func (r *CompositionRepositoryImpl) UpdateComposition(
	_ context.Context,
	id int64,
	updateFn func(c *domain.Composition) (*domain.Composition, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	currentComposition, err := r.getComposition(id)
	if err != nil {
		return err
	}

	updatedComposition, err := updateFn(currentComposition)
	if err != nil {
		return err
	}

	r.compositions[id] = updatedComposition
	return nil
}

func (r *CompositionRepositoryImpl) getComposition(
	id int64,
) (*domain.Composition, error) {
	composition, ok := r.compositions[id]
	if !ok {
		return nil, domain.ErrCompositionNotFound
	}
	clone := *composition
	return &clone, nil
}
