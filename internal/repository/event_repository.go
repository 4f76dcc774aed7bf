package repository

import (
	"context"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.TravelEvent) error
	Set(ctx context.Context, event *models.TravelEvent) error
	UpdateStatus(ctx context.Context, id, status string) error
	FindAll(ctx context.Context) ([]models.TravelEvent, error)
}

type storeEventRepository struct {
	store Store
}

func NewEventRepository(store Store) EventRepository {
	return &storeEventRepository{store: store}
}

// Create adds the event under a store-assigned ID and writes it back to event.ID.
func (r *storeEventRepository) Create(ctx context.Context, event *models.TravelEvent) error {
	data, err := ToDocument(event)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, types.CollectionEvents, data)
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *storeEventRepository) Set(ctx context.Context, event *models.TravelEvent) error {
	data, err := ToDocument(event)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, types.CollectionEvents, event.ID, data)
}

func (r *storeEventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.store.Update(ctx, types.CollectionEvents, id, map[string]any{"status": status})
}

func (r *storeEventRepository) FindAll(ctx context.Context) ([]models.TravelEvent, error) {
	docs, err := r.store.GetAll(ctx, types.CollectionEvents)
	if err != nil {
		return nil, err
	}
	events, _ := DecodeDocs[models.TravelEvent](docs)
	return events, nil
}
