package dbbadger

import (
	"context"
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
)

var compositionSeqKey = []byte("bh_Composition_seq")

type compositionRepositoryImpl struct {
	db *DbManager
}

// NewCompositionRepositoryImpl returns a badger backed CompositionRepository.
func NewCompositionRepositoryImpl(db *DbManager) domain.CompositionRepository {
	return compositionRepositoryImpl{
		db: db,
	}
}

func (r compositionRepositoryImpl) AddComposition(
	ctx context.Context, composition *domain.Composition,
) (int64, error) {
	id, err := r.nextID()
	if err != nil {
		return -1, err
	}

	composition.ID = id
	if err := r.db.CompositionStore.Insert(id, *composition); err != nil {
		return -1, err
	}
	return id, nil
}

func (r compositionRepositoryImpl) GetCompositionByID(
	ctx context.Context, id int64,
) (*domain.Composition, error) {
	var composition domain.Composition
	if err := r.db.CompositionStore.Get(id, &composition); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrCompositionNotFound
		}
		return nil, err
	}
	return &composition, nil
}

func (r compositionRepositoryImpl) GetCompositionsForUser(
	ctx context.Context, userAddress string,
) ([]*domain.Composition, error) {
	// Stored addresses are not guaranteed byte-identical in casing with the
	// ones coming from the API, the match must be case-insensitive.
	query := badgerhold.Where("UserAddress").MatchFunc(
		func(ra *badgerhold.RecordAccess) (bool, error) {
			composition, ok := ra.Record().(*domain.Composition)
			if !ok {
				return false, nil
			}
			return strings.EqualFold(composition.UserAddress, userAddress), nil
		},
	)

	var found []domain.Composition
	if err := r.db.CompositionStore.Find(&found, query); err != nil {
		return nil, err
	}

	compositions := make([]*domain.Composition, 0, len(found))
	for i := range found {
		compositions = append(compositions, &found[i])
	}
	return compositions, nil
}

func (r compositionRepositoryImpl) UpdateComposition(
	ctx context.Context,
	id int64,
	updateFn func(c *domain.Composition) (*domain.Composition, error),
) error {
	currentComposition, err := r.GetCompositionByID(ctx, id)
	if err != nil {
		return err
	}

	updatedComposition, err := updateFn(currentComposition)
	if err != nil {
		return err
	}

	return r.db.CompositionStore.Update(id, *updatedComposition)
}

// nextID hands out monotonically increasing composition ids, starting at 1.
func (r compositionRepositoryImpl) nextID() (int64, error) {
	seq, err := r.db.CompositionStore.Badger().GetSequence(compositionSeqKey, 1)
	if err != nil {
		return -1, err
	}
	defer seq.Release()

	n, err := seq.Next()
	if err != nil {
		return -1, err
	}
	return int64(n) + 1, nil
}
