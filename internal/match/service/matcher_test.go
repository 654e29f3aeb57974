package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/store"
)

const testUser int64 = 39

func rec(title string) model.Record {
	return model.Record{Title: title, Categories: []model.CategoryRef{}}
}

func newTestMatcher(st store.Catalog) *Matcher {
	return NewMatcher(st, model.DefaultOptions(testUser), newProcessedSet(), zerolog.Nop())
}

func TestMatcherExactPhase(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	id := st.AddProduct(testUser, "Product Alpha X200")

	out, err := newTestMatcher(st).MatchAll(ctx, []model.Record{rec("Product Alpha X200")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Product)
	assert.Equal(t, id, out[0].Product.ID)
	assert.False(t, out[0].Fuzzy)
}

func TestMatcherExactScopedToUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	st.AddProduct(7, "Product Alpha X200") // someone else's catalog

	out, err := newTestMatcher(st).MatchAll(ctx, []model.Record{rec("Product Alpha X200")})
	require.NoError(t, err)
	assert.Nil(t, out[0].Product)
}

func TestMatcherFuzzyPhase(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	id := st.AddProduct(testUser, "Samsung Galaxy S21 Phone")

	// typo'd title: no exact match, three shared meaningful words
	out, err := newTestMatcher(st).MatchAll(ctx, []model.Record{rec("samsungg galaxy s21 phone case")})
	require.NoError(t, err)
	require.NotNil(t, out[0].Product)
	assert.Equal(t, id, out[0].Product.ID)
	assert.True(t, out[0].Fuzzy)
	assert.GreaterOrEqual(t, out[0].Score, 3)
}

func TestMatcherWeakSignalRejected(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	st.AddProduct(testUser, "گوشی موبایل سامسونگ گلکسی")

	// two meaningful words is below the eligibility floor
	out, err := newTestMatcher(st).MatchAll(ctx, []model.Record{rec("گوشی سامسونگ")})
	require.NoError(t, err)
	assert.Nil(t, out[0].Product)
}

func TestMatcherPhaseExclusion(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	st.AddProduct(testUser, "alpha beta gamma delta")

	records := []model.Record{
		rec("alpha beta gamma delta"),  // phase 1 claims the product
		rec("alphaa beta gamma delta"), // would score 3 against it
	}
	out, err := newTestMatcher(st).MatchAll(ctx, records)
	require.NoError(t, err)
	require.NotNil(t, out[0].Product)
	assert.Nil(t, out[1].Product, "claimed product must not be a phase-2 candidate")
}

func TestMatcherClaimRemoval(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	st.AddProduct(testUser, "samsung galaxy s21 phone")

	records := []model.Record{
		rec("samsungg galaxy s21 phone one"),
		rec("samsunggg galaxy s21 phone two"),
	}
	out, err := newTestMatcher(st).MatchAll(ctx, records)
	require.NoError(t, err)
	require.NotNil(t, out[0].Product, "first record wins the fuzzy match")
	assert.Nil(t, out[1].Product, "second record must not reuse the claimed product")
}

func TestMatcherBestOverlapWins(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	st.AddProduct(testUser, "samsung galaxy s21 case")
	best := st.AddProduct(testUser, "samsung galaxy s21 phone black")

	out, err := newTestMatcher(st).MatchAll(ctx, []model.Record{rec("samsungg galaxy s21 phone black")})
	require.NoError(t, err)
	require.NotNil(t, out[0].Product)
	assert.Equal(t, best, out[0].Product.ID)
}
