package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/store"
)

// Run states.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

// The source sometimes emits a login-prompt pair instead of a real
// specification; it is dropped on sight.
const (
	junkSpecTitle = "ترب"
	junkSpecBody  = "ورود / ثبت نام"
)

// Runner reconciles one batch of input records against the catalog. All
// mutable run state (claim set, stats) lives here and is discarded with it.
type Runner struct {
	st    store.Catalog
	opt   model.Options
	log   zerolog.Logger
	state State
	stats model.Stats
	set   *processedSet
}

func NewRunner(st store.Catalog, opt model.Options, log zerolog.Logger) *Runner {
	return &Runner{st: st, opt: opt.WithDefaults(), log: log, state: StateIdle}
}

func (r *Runner) State() State       { return r.state }
func (r *Runner) Stats() model.Stats { return r.stats }

// Run processes the batch: validate, match everything in two phases, then
// assign categories, brand and specs per matched record in input order.
// Failures inside a record are logged and contained; cancellation between
// records returns the partial stats.
func (r *Runner) Run(ctx context.Context, records []model.Record) (model.Stats, error) {
	r.state = StateRunning
	r.stats = model.Stats{}
	r.set = newProcessedSet()

	valid := make([]model.Record, 0, len(records))
	for _, rec := range records {
		r.stats.Processed++
		if !rec.Valid() {
			r.stats.Invalid++
			r.log.Warn().Str("title", rec.Title).Msg("incomplete record skipped")
			continue
		}
		valid = append(valid, rec)
	}

	matcher := NewMatcher(r.st, r.opt, r.set, r.log)
	matches, err := matcher.MatchAll(ctx, valid)
	if err != nil {
		r.state = StateFailed
		r.stats.Finalize(len(r.set.titles))
		return r.stats, err
	}

	for _, mt := range matches {
		if err := ctx.Err(); err != nil {
			r.state = StateFailed
			r.stats.Finalize(len(r.set.titles))
			return r.stats, err
		}
		if mt.Product == nil {
			r.stats.NotFound++
			r.log.Info().Str("title", mt.Record.Title).Msg("no product match")
			continue
		}
		if err := r.assign(ctx, mt); err != nil {
			r.log.Error().Err(err).
				Int64("product_id", mt.Product.ID).
				Str("title", mt.Record.Title).
				Msg("record assignment failed")
			continue
		}
		r.stats.Matched++
	}

	r.stats.Finalize(len(r.set.titles))
	r.state = StateCompleted
	r.log.Info().
		Int("processed", r.stats.Processed).
		Int("matched", r.stats.Matched).
		Int("not_found", r.stats.NotFound).
		Float64("success_rate", r.stats.SuccessRate).
		Msg("run completed")
	return r.stats, nil
}

func (r *Runner) assign(ctx context.Context, mt Match) error {
	p := mt.Product
	r.log.Info().
		Int64("product_id", p.ID).
		Str("product_title", p.Title).
		Str("record_title", mt.Record.Title).
		Bool("fuzzy", mt.Fuzzy).
		Msg("product matched")

	if err := r.assignCategories(ctx, p, mt.Record.Categories); err != nil {
		return err
	}
	if brand := strings.TrimSpace(mt.Record.Brand); brand != "" {
		r.assignBrand(ctx, p, brand) // best effort
	}
	r.assignSpecs(ctx, p, mt.Record.Specifications) // best effort
	return nil
}

// assignCategories replaces the product's category set transactionally:
// detach, resolve-or-create each name, attach. Resolution order is level
// descending with input order preserved on ties, which fixes the creation
// order of new categories; the attached links are an unordered set.
func (r *Runner) assignCategories(ctx context.Context, p *store.Product, categories []model.CategoryRef) error {
	sorted := append([]model.CategoryRef(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level > sorted[j].Level })

	if r.opt.DryRun {
		created := 0
		res := NewResolver(r.st, store.EntityCategory, r.opt.CategoryThreshold, &created, true, r.log)
		for _, c := range sorted {
			if c.Name == "" {
				continue
			}
			if _, err := res.Resolve(ctx, c.Name); err != nil {
				return fmt.Errorf("dry-run category resolve: %w", err)
			}
		}
		r.stats.CategoriesCreated += created
		return nil
	}

	created := 0
	var ids []int64
	err := r.st.Tx(ctx, func(tx store.Catalog) error {
		created = 0
		ids = ids[:0]
		res := NewResolver(tx, store.EntityCategory, r.opt.CategoryThreshold, &created, false, r.log)

		if err := tx.DetachCategories(ctx, p.ID); err != nil {
			return fmt.Errorf("detaching categories: %w", err)
		}
		for _, c := range sorted {
			if c.Name == "" {
				continue
			}
			e, err := res.Resolve(ctx, c.Name)
			if err != nil {
				return err
			}
			ids = append(ids, e.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.AttachCategories(ctx, p.ID, ids)
	})
	if err != nil {
		return fmt.Errorf("assigning categories: %w", err)
	}

	// counters merge only after the transaction committed
	r.stats.CategoriesCreated += created
	r.log.Info().
		Int64("product_id", p.ID).
		Int("categories", len(ids)).
		Msg("product categories updated")
	return nil
}

// assignBrand resolves the brand and links it unless the link already
// exists. Never fails the record: errors are logged and swallowed.
func (r *Runner) assignBrand(ctx context.Context, p *store.Product, name string) {
	created := 0
	res := NewResolver(r.st, store.EntityBrand, r.opt.BrandThreshold, &created, r.opt.DryRun, r.log)
	brand, err := res.Resolve(ctx, name)
	if err != nil {
		r.log.Error().Err(err).Int64("product_id", p.ID).Str("brand", name).Msg("brand resolution failed")
		return
	}
	r.stats.BrandsCreated += created

	if brand.ID != 0 {
		exists, err := r.st.BrandLinkExists(ctx, p.ID, brand.ID)
		if err != nil {
			r.log.Error().Err(err).Int64("product_id", p.ID).Msg("brand link check failed")
			return
		}
		if exists {
			r.log.Debug().Int64("product_id", p.ID).Int64("brand_id", brand.ID).Msg("brand already linked")
			return
		}
	}
	if !r.opt.DryRun {
		if err := r.st.LinkBrand(ctx, p.ID, brand.ID); err != nil {
			r.log.Error().Err(err).Int64("product_id", p.ID).Int64("brand_id", brand.ID).Msg("brand link failed")
			return
		}
	}
	r.stats.BrandsAssigned++
	r.log.Info().
		Int64("product_id", p.ID).
		Int64("brand_id", brand.ID).
		Str("brand", brand.Name).
		Msg("brand assigned")
}

// assignSpecs moves key_specs into the product property list and
// general_specs into its specifications list, dropping the junk pair.
// Best effort: the product is updated only when something remains.
func (r *Runner) assignSpecs(ctx context.Context, p *store.Product, specs *model.Specifications) {
	if specs == nil {
		return
	}
	property := filterSpecs(specs.KeySpecs)
	general := filterSpecs(specs.GeneralSpecs)
	if len(property) == 0 && len(general) == 0 {
		return
	}
	if r.opt.DryRun {
		return
	}
	if err := r.st.UpdateProductSpecs(ctx, p.ID, property, general); err != nil {
		r.log.Error().Err(err).Int64("product_id", p.ID).Msg("spec update failed")
		return
	}
	r.log.Info().
		Int64("product_id", p.ID).
		Int("key_specs", len(property)).
		Int("general_specs", len(general)).
		Msg("product specs updated")
}

func filterSpecs(in []model.SpecPair) []model.SpecPair {
	out := make([]model.SpecPair, 0, len(in))
	for _, s := range in {
		if s.Title == "" && s.Body == "" {
			continue
		}
		if s.Title == junkSpecTitle && s.Body == junkSpecBody {
			continue
		}
		out = append(out, s)
	}
	return out
}
