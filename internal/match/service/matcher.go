package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/store"
)

// processedSet tracks what the current run has consumed: normalized record
// titles that resolved to a product, and the ids of products claimed by a
// match. Lifetime is one run.
type processedSet struct {
	titles   map[string]struct{}
	products map[int64]struct{}
}

func newProcessedSet() *processedSet {
	return &processedSet{
		titles:   make(map[string]struct{}),
		products: make(map[int64]struct{}),
	}
}

func (p *processedSet) claim(normTitle string, productID int64) {
	p.titles[normTitle] = struct{}{}
	p.products[productID] = struct{}{}
}

func (p *processedSet) hasTitle(normTitle string) bool {
	_, ok := p.titles[normTitle]
	return ok
}

func (p *processedSet) productIDs() []int64 {
	ids := make([]int64, 0, len(p.products))
	for id := range p.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Match pairs an input record with its resolved product; Product is nil
// when nothing matched.
type Match struct {
	Record  model.Record
	Product *store.Product
	Fuzzy   bool
	Score   int
}

// Matcher resolves input titles to catalog products in two phases over the
// whole batch: exact title matches first, then a word-overlap fuzzy pass
// over the records and products left unclaimed.
type Matcher struct {
	st  store.Catalog
	opt model.Options
	set *processedSet
	log zerolog.Logger
}

func NewMatcher(st store.Catalog, opt model.Options, set *processedSet, log zerolog.Logger) *Matcher {
	return &Matcher{st: st, opt: opt, set: set, log: log}
}

// MatchAll runs both phases to completion and returns one Match per record,
// in input order.
func (m *Matcher) MatchAll(ctx context.Context, records []model.Record) ([]Match, error) {
	out := make([]Match, len(records))

	// phase 1: byte-for-byte title match scoped to the user
	for i, rec := range records {
		out[i] = Match{Record: rec}
		p, err := m.st.FindProductExact(ctx, m.opt.UserID, rec.Title)
		if err != nil {
			return nil, fmt.Errorf("exact product lookup: %w", err)
		}
		if p != nil {
			out[i].Product = p
			m.set.claim(Normalize(rec.Title), p.ID)
		}
	}

	// phase 2: fuzzy over the residual set; claimed products are excluded
	for i := range out {
		if out[i].Product != nil {
			continue
		}
		if m.set.hasTitle(Normalize(out[i].Record.Title)) {
			// duplicate of a title already resolved this run
			continue
		}
		p, score, err := m.fuzzy(ctx, out[i].Record.Title)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		out[i].Product = p
		out[i].Fuzzy = true
		out[i].Score = score
		m.set.claim(Normalize(out[i].Record.Title), p.ID)
	}

	return out, nil
}

// fuzzy scores unclaimed products of the user by raw meaningful-word
// intersection with the title and keeps the best. Titles with too few
// meaningful words are rejected outright; a weak signal matches everything.
func (m *Matcher) fuzzy(ctx context.Context, title string) (*store.Product, int, error) {
	words := MeaningfulWords(title)
	if len(words) < m.opt.MinFuzzyWords {
		m.log.Debug().
			Str("title", title).
			Int("word_count", len(words)).
			Msg("too few meaningful words, skipping fuzzy search")
		return nil, 0, nil
	}

	products, err := m.st.ListProducts(ctx, m.opt.UserID, m.set.productIDs())
	if err != nil {
		return nil, 0, fmt.Errorf("listing candidate products: %w", err)
	}

	var best *store.Product
	bestScore := 0
	for i := range products {
		score := wordOverlap(words, MeaningfulWords(products[i].Title))
		if score >= m.opt.CandidateFloor && score > bestScore {
			best = &products[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < m.opt.AcceptScore {
		m.log.Debug().
			Str("title", title).
			Int("best_score", bestScore).
			Int("minimum_required", m.opt.AcceptScore).
			Msg("no valid fuzzy product match")
		return nil, bestScore, nil
	}

	m.log.Info().
		Str("title", title).
		Str("product_title", best.Title).
		Int64("product_id", best.ID).
		Int("score", bestScore).
		Msg("fuzzy product match")
	return best, bestScore, nil
}
