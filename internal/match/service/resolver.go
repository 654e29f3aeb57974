package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/store"
)

// Resolver finds or creates one kind of named catalog entity. Resolve never
// returns nil without an error: exact lookup first, then a fuzzy scan over
// all stored names, then creation with a unique slug.
type Resolver struct {
	st        store.Catalog
	typ       store.EntityType
	threshold float64
	created   *int
	dryRun    bool
	log       zerolog.Logger
}

func NewResolver(st store.Catalog, typ store.EntityType, threshold float64, created *int, dryRun bool, log zerolog.Logger) *Resolver {
	return &Resolver{st: st, typ: typ, threshold: threshold, created: created, dryRun: dryRun, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (*store.Entity, error) {
	e, err := r.st.FindEntityExact(ctx, r.typ, name)
	if err != nil {
		return nil, fmt.Errorf("exact %s lookup: %w", r.typ, err)
	}
	if e != nil {
		return e, nil
	}

	e, err = r.fuzzy(ctx, name)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	return r.create(ctx, name)
}

// fuzzy scans every stored entity of this type and keeps the best score
// strictly above the threshold.
func (r *Resolver) fuzzy(ctx context.Context, name string) (*store.Entity, error) {
	norm := Normalize(name)
	entities, err := r.st.ListEntities(ctx, r.typ)
	if err != nil {
		return nil, fmt.Errorf("listing %s entities: %w", r.typ, err)
	}

	var best *store.Entity
	bestScore := 0.0
	for i := range entities {
		s := Score(norm, Normalize(entities[i].Name))
		if s > r.threshold && s > bestScore {
			best = &entities[i]
			bestScore = s
		}
	}
	if best != nil {
		r.log.Debug().
			Str("type", string(r.typ)).
			Str("name", name).
			Str("found", best.Name).
			Float64("similarity", bestScore).
			Msg("fuzzy entity match")
	}
	return best, nil
}

func (r *Resolver) create(ctx context.Context, name string) (*store.Entity, error) {
	if r.dryRun {
		*r.created++
		return &store.Entity{Name: name, Slug: BaseSlug(name), NameSeo: name}, nil
	}

	slug, err := UniqueSlug(name, func(s string) (bool, error) {
		return r.st.SlugExists(ctx, r.typ, s)
	})
	if err != nil {
		return nil, fmt.Errorf("deriving %s slug: %w", r.typ, err)
	}

	e, err := r.st.CreateEntity(ctx, r.typ, name, slug, name)
	if errors.Is(err, store.ErrConflict) {
		// a concurrent run created it between our check and insert
		existing, lerr := r.st.FindEntityExact(ctx, r.typ, name)
		if lerr != nil {
			return nil, fmt.Errorf("re-lookup after conflict: %w", lerr)
		}
		if existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("creating %s %q: %w", r.typ, name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s %q: %w", r.typ, name, err)
	}

	*r.created++
	r.log.Info().
		Str("type", string(r.typ)).
		Str("name", name).
		Str("slug", slug).
		Int64("id", e.ID).
		Msg("entity created")
	return e, nil
}
