package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.InsertProduct(ctx, 39, "گوشی موبایل سامسونگ")
	require.NoError(t, err)

	p, err := s.FindProductExact(ctx, 39, "گوشی موبایل سامسونگ")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, int64(39), p.UserID)
	assert.Empty(t, p.Property)
	assert.Empty(t, p.Specifications)

	missing, err := s.FindProductExact(ctx, 39, "نیست")
	require.NoError(t, err)
	assert.Nil(t, missing)

	otherUser, err := s.FindProductExact(ctx, 7, "گوشی موبایل سامسونگ")
	require.NoError(t, err)
	assert.Nil(t, otherUser)
}

func TestListProductsExcludes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, err := s.InsertProduct(ctx, 39, "alpha")
	require.NoError(t, err)
	b, err := s.InsertProduct(ctx, 39, "beta")
	require.NoError(t, err)
	_, err = s.InsertProduct(ctx, 7, "gamma")
	require.NoError(t, err)

	got, err := s.ListProducts(ctx, 39, []int64{a})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0].ID)

	all, err := s.ListProducts(ctx, 39, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateEntityDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e, err := s.CreateEntity(ctx, store.EntityCategory, "موبایل", "mobile", "موبایل")
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	_, err = s.CreateEntity(ctx, store.EntityCategory, "Mobile", "mobile", "")
	assert.True(t, errors.Is(err, store.ErrConflict), "got %v", err)

	ok, err := s.SlugExists(ctx, store.EntityCategory, "mobile")
	require.NoError(t, err)
	assert.True(t, ok)

	// brand slugs live in their own table
	ok, err = s.SlugExists(ctx, store.EntityBrand, "mobile")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindEntityExact(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.CreateEntity(ctx, store.EntityBrand, "Nike", "nike", "نایک")
	require.NoError(t, err)

	e, err := s.FindEntityExact(ctx, store.EntityBrand, "Nike")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, created.ID, e.ID)
	assert.Equal(t, "نایک", e.NameSeo)

	missing, err := s.FindEntityExact(ctx, store.EntityBrand, "Adidas")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryLinks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	pid, err := s.InsertProduct(ctx, 39, "کفش ورزشی")
	require.NoError(t, err)
	c1, err := s.CreateEntity(ctx, store.EntityCategory, "کفش", "shoes", "")
	require.NoError(t, err)
	c2, err := s.CreateEntity(ctx, store.EntityCategory, "ورزشی", "sport", "")
	require.NoError(t, err)

	require.NoError(t, s.AttachCategories(ctx, pid, []int64{c1.ID, c2.ID}))
	// re-attaching the same pair is a no-op
	require.NoError(t, s.AttachCategories(ctx, pid, []int64{c1.ID}))

	require.NoError(t, s.DetachCategories(ctx, pid))
	require.NoError(t, s.AttachCategories(ctx, pid, []int64{c2.ID}))

	var n int
	err = s.db.QueryRow(`SELECT COUNT(1) FROM catables WHERE product_id = ?`, pid).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBrandLinks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	pid, err := s.InsertProduct(ctx, 39, "کفش نایک")
	require.NoError(t, err)
	b, err := s.CreateEntity(ctx, store.EntityBrand, "Nike", "nike", "")
	require.NoError(t, err)

	ok, err := s.BrandLinkExists(ctx, pid, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.LinkBrand(ctx, pid, b.ID))
	require.NoError(t, s.LinkBrand(ctx, pid, b.ID)) // idempotent

	ok, err = s.BrandLinkExists(ctx, pid, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateProductSpecs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	pid, err := s.InsertProduct(ctx, 39, "گوشی")
	require.NoError(t, err)

	property := []model.SpecPair{{Title: "رنگ", Body: "مشکی"}}
	specs := []model.SpecPair{{Title: "گارانتی", Body: "۱۸ ماه"}}
	require.NoError(t, s.UpdateProductSpecs(ctx, pid, property, specs))

	p, err := s.FindProductExact(ctx, 39, "گوشی")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, property, p.Property)
	assert.Equal(t, specs, p.Specifications)

	// empty slices leave the stored values untouched
	require.NoError(t, s.UpdateProductSpecs(ctx, pid, nil, nil))
	p, err = s.FindProductExact(ctx, 39, "گوشی")
	require.NoError(t, err)
	assert.Equal(t, property, p.Property)
}

func TestTxRollback(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	pid, err := s.InsertProduct(ctx, 39, "گوشی")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Tx(ctx, func(c store.Catalog) error {
		e, err := c.CreateEntity(ctx, store.EntityCategory, "موبایل", "mobile", "")
		if err != nil {
			return err
		}
		if err := c.AttachCategories(ctx, pid, []int64{e.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cats, err := s.ListEntities(ctx, store.EntityCategory)
	require.NoError(t, err)
	assert.Empty(t, cats)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(1) FROM catables`).Scan(&n))
	assert.Zero(t, n)
}

func TestTxCommitAndNesting(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Tx(ctx, func(c store.Catalog) error {
		if _, err := c.CreateEntity(ctx, store.EntityCategory, "موبایل", "mobile", ""); err != nil {
			return err
		}
		// nested scope reuses the open transaction
		return c.Tx(ctx, func(inner store.Catalog) error {
			_, err := inner.CreateEntity(ctx, store.EntityCategory, "لپ تاپ", "laptop", "")
			return err
		})
	})
	require.NoError(t, err)

	cats, err := s.ListEntities(ctx, store.EntityCategory)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}
