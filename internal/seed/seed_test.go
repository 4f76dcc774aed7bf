package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

func TestSeedEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	res, err := SeedData(ctx, repository.NewRepositories(store))
	require.NoError(t, err)

	members, err := Members()
	require.NoError(t, err)
	assert.Equal(t, Result{Members: len(members), Events: len(Events())}, res)

	docs, err := store.GetAll(ctx, types.CollectionMembers)
	require.NoError(t, err)
	require.Len(t, docs, len(members))
	assert.Equal(t, "member-karthik", docs[0].ID)

	seeded, err := repository.DecodeDoc[models.Member](docs[0])
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(seeded.Password), []byte(DefaultPassword)))
	assert.Len(t, seeded.FamilyMembers, 2)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	repos := repository.NewRepositories(store)

	_, err := Seed(ctx, repos, []models.Member{{ID: "m1"}}, []models.TravelEvent{{ID: "e1"}})
	require.NoError(t, err)

	res, err := Seed(ctx, repos, []models.Member{{ID: "m2"}}, []models.TravelEvent{{ID: "e2"}})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	docs, _ := store.GetAll(ctx, types.CollectionMembers)
	assert.Len(t, docs, 1)
}

func TestSeedCollectionsIndependently(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, types.CollectionMembers, "existing", map[string]any{"name": "Already here"}))

	res, err := Seed(ctx, repository.NewRepositories(store),
		[]models.Member{{ID: "m1"}},
		[]models.TravelEvent{{ID: "e1"}, {ID: "e2"}},
	)
	require.NoError(t, err)
	assert.Equal(t, Result{Members: 0, Events: 2}, res)

	members, _ := store.GetAll(ctx, types.CollectionMembers)
	assert.Len(t, members, 1)
	events, _ := store.GetAll(ctx, types.CollectionEvents)
	assert.Len(t, events, 2)
}
