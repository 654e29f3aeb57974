// Package store defines the catalog storage port the matching core talks to.
package store

import (
	"context"
	"errors"

	"catalog-matcher/internal/match/model"
)

type EntityType string

const (
	EntityCategory EntityType = "category"
	EntityBrand    EntityType = "brand"
)

// ErrConflict is returned by CreateEntity when a uniqueness constraint is
// violated, meaning a concurrent run created the entity first.
var ErrConflict = errors.New("store: unique constraint violation")

// Entity is a named catalog entity (category or brand) with a unique slug.
type Entity struct {
	ID      int64
	Name    string
	Slug    string
	NameSeo string
}

// Product is a catalog product. The core never creates products; it only
// reads them and rewrites their category/brand/spec associations.
type Product struct {
	ID             int64
	UserID         int64
	Title          string
	Property       []model.SpecPair
	Specifications []model.SpecPair
}

// Catalog is the storage collaborator. Find* methods return nil (and no
// error) when nothing matches.
type Catalog interface {
	FindProductExact(ctx context.Context, userID int64, title string) (*Product, error)
	ListProducts(ctx context.Context, userID int64, excludeIDs []int64) ([]Product, error)

	FindEntityExact(ctx context.Context, t EntityType, name string) (*Entity, error)
	ListEntities(ctx context.Context, t EntityType) ([]Entity, error)
	CreateEntity(ctx context.Context, t EntityType, name, slug, nameSeo string) (*Entity, error)
	SlugExists(ctx context.Context, t EntityType, slug string) (bool, error)

	DetachCategories(ctx context.Context, productID int64) error
	AttachCategories(ctx context.Context, productID int64, categoryIDs []int64) error

	LinkBrand(ctx context.Context, productID, brandID int64) error
	BrandLinkExists(ctx context.Context, productID, brandID int64) (bool, error)

	UpdateProductSpecs(ctx context.Context, productID int64, property, specifications []model.SpecPair) error

	// Tx runs fn in a storage transaction: every write made through the
	// Catalog passed to fn is committed together or not at all.
	Tx(ctx context.Context, fn func(Catalog) error) error
}
