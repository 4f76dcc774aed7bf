package repository

import (
	"context"
	"sort"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

type MinutesRepository interface {
	Create(ctx context.Context, mom *models.SavedMOM) error
	FindAll(ctx context.Context) ([]models.SavedMOM, error)
}

type storeMinutesRepository struct {
	store Store
}

func NewMinutesRepository(store Store) MinutesRepository {
	return &storeMinutesRepository{store: store}
}

func (r *storeMinutesRepository) Create(ctx context.Context, mom *models.SavedMOM) error {
	data, err := ToDocument(mom)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, types.CollectionMinutes, data)
	if err != nil {
		return err
	}
	mom.ID = id
	return nil
}

// FindAll returns saved minutes newest first.
func (r *storeMinutesRepository) FindAll(ctx context.Context) ([]models.SavedMOM, error) {
	docs, err := r.store.GetAll(ctx, types.CollectionMinutes)
	if err != nil {
		return nil, err
	}
	moms, _ := DecodeDocs[models.SavedMOM](docs)
	sort.SliceStable(moms, func(i, j int) bool {
		return moms[i].Timestamp > moms[j].Timestamp
	})
	return moms, nil
}
