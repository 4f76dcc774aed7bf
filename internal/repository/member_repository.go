package repository

import (
	"context"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

type MemberRepository interface {
	Set(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, id string, fields map[string]any) error
	FindAll(ctx context.Context) ([]models.Member, error)
}

type storeMemberRepository struct {
	store Store
}

func NewMemberRepository(store Store) MemberRepository {
	return &storeMemberRepository{store: store}
}

func (r *storeMemberRepository) Set(ctx context.Context, member *models.Member) error {
	data, err := ToDocument(member)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, types.CollectionMembers, member.ID, data)
}

func (r *storeMemberRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, types.CollectionMembers, id, fields)
}

func (r *storeMemberRepository) FindAll(ctx context.Context) ([]models.Member, error) {
	docs, err := r.store.GetAll(ctx, types.CollectionMembers)
	if err != nil {
		return nil, err
	}
	members, _ := DecodeDocs[models.Member](docs)
	return members, nil
}
