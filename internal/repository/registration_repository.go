package repository

import (
	"context"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// RegistrationRepository only creates: registrations are never updated or
// deleted.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
}

type storeRegistrationRepository struct {
	store Store
}

func NewRegistrationRepository(store Store) RegistrationRepository {
	return &storeRegistrationRepository{store: store}
}

func (r *storeRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	data, err := ToDocument(reg)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, types.CollectionRegistrations, reg.ID, data)
}
