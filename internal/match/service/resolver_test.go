package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/store"
)

func newCategoryResolver(st store.Catalog, created *int) *Resolver {
	return NewResolver(st, store.EntityCategory, 85, created, false, zerolog.Nop())
}

func TestResolverExactMatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	id := st.AddEntity(store.EntityCategory, "لوازم خانگی", "لوازم-خانگی")

	created := 0
	e, err := newCategoryResolver(st, &created).Resolve(ctx, "لوازم خانگی")
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Zero(t, created)
}

func TestResolverFuzzyMatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	id := st.AddEntity(store.EntityCategory, "Mobile Phones", "mobile-phones")

	// raw name differs, normalized forms are identical
	created := 0
	e, err := newCategoryResolver(st, &created).Resolve(ctx, "mobile phones")
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Zero(t, created)
}

func TestResolverCreates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	created := 0
	e, err := newCategoryResolver(st, &created).Resolve(ctx, "کفش ورزشی")
	require.NoError(t, err)
	assert.Equal(t, "کفش ورزشی", e.Name)
	assert.Equal(t, "کفش-ورزشی", e.Slug)
	assert.Equal(t, 1, created)
}

func TestResolverIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	created := 0
	r := newCategoryResolver(st, &created)
	first, err := r.Resolve(ctx, "کفش")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "کفش")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, created)
}

// conflictStore simulates a concurrent run winning the create race: the
// first CreateEntity inserts the row (as the other writer) and reports a
// uniqueness violation.
type conflictStore struct {
	*store.MemStore
	fired bool
}

func (c *conflictStore) CreateEntity(ctx context.Context, t store.EntityType, name, slug, nameSeo string) (*store.Entity, error) {
	if !c.fired {
		c.fired = true
		if _, err := c.MemStore.CreateEntity(ctx, t, name, slug, nameSeo); err != nil {
			return nil, err
		}
		return nil, store.ErrConflict
	}
	return c.MemStore.CreateEntity(ctx, t, name, slug, nameSeo)
}

func TestResolverRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	st := &conflictStore{MemStore: store.NewMemStore()}

	created := 0
	e, err := newCategoryResolver(st, &created).Resolve(ctx, "برند تستی")
	require.NoError(t, err)
	assert.Equal(t, "برند تستی", e.Name)
	// the entity was created by the "other" run, not this one
	assert.Zero(t, created)
}

func TestResolverDryRunCounts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	created := 0
	r := NewResolver(st, store.EntityBrand, 85, &created, true, zerolog.Nop())
	e, err := r.Resolve(ctx, "Nike")
	require.NoError(t, err)
	assert.Zero(t, e.ID)
	assert.Equal(t, 1, created)

	// nothing was written
	entities, err := st.ListEntities(ctx, store.EntityBrand)
	require.NoError(t, err)
	assert.Empty(t, entities)
}
