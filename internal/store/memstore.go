package store

import (
	"context"
	"sort"
	"sync"

	"catalog-matcher/internal/match/model"
)

// MemStore is an in-memory Catalog used by tests and local experiments.
// Writes are guarded by a single mutex; Tx snapshots the whole state and
// restores it when fn fails.
type MemStore struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]Product
	entities   map[EntityType][]Entity
	catLinks   map[int64][]int64
	brandLinks map[int64]map[int64]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:   make(map[int64]Product),
		entities:   map[EntityType][]Entity{EntityCategory: nil, EntityBrand: nil},
		catLinks:   make(map[int64][]int64),
		brandLinks: make(map[int64]map[int64]bool),
	}
}

// AddProduct seeds a product and returns its id.
func (m *MemStore) AddProduct(userID int64, title string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.products[m.nextID] = Product{ID: m.nextID, UserID: userID, Title: title}
	return m.nextID
}

// AddEntity seeds an entity directly, bypassing the slug protocol.
func (m *MemStore) AddEntity(t EntityType, name, slug string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.entities[t] = append(m.entities[t], Entity{ID: m.nextID, Name: name, Slug: slug, NameSeo: name})
	return m.nextID
}

// CategoriesOf returns the linked category ids of a product, sorted.
func (m *MemStore) CategoriesOf(productID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := append([]int64(nil), m.catLinks[productID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BrandsOf returns the linked brand ids of a product, sorted.
func (m *MemStore) BrandsOf(productID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id := range m.brandLinks[productID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemStore) FindProductExact(_ context.Context, userID int64, title string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := int64(-1)
	for id, p := range m.products {
		if p.UserID == userID && p.Title == title && (best == -1 || id < best) {
			best = id
		}
	}
	if best == -1 {
		return nil, nil
	}
	p := m.products[best]
	return &p, nil
}

func (m *MemStore) ListProducts(_ context.Context, userID int64, excludeIDs []int64) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	skip := make(map[int64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var out []Product
	for _, p := range m.products {
		if p.UserID == userID && !skip[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) FindEntityExact(_ context.Context, t EntityType, name string) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entities[t] {
		if m.entities[t][i].Name == name {
			e := m.entities[t][i]
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListEntities(_ context.Context, t EntityType) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entity(nil), m.entities[t]...), nil
}

func (m *MemStore) CreateEntity(_ context.Context, t EntityType, name, slug, nameSeo string) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entities[t] {
		if m.entities[t][i].Slug == slug {
			return nil, ErrConflict
		}
	}
	m.nextID++
	e := Entity{ID: m.nextID, Name: name, Slug: slug, NameSeo: nameSeo}
	m.entities[t] = append(m.entities[t], e)
	return &e, nil
}

func (m *MemStore) SlugExists(_ context.Context, t EntityType, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entities[t] {
		if m.entities[t][i].Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) DetachCategories(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.catLinks, productID)
	return nil
}

func (m *MemStore) AttachCategories(_ context.Context, productID int64, categoryIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catLinks[productID] = append(m.catLinks[productID], categoryIDs...)
	return nil
}

func (m *MemStore) LinkBrand(_ context.Context, productID, brandID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.brandLinks[productID] == nil {
		m.brandLinks[productID] = make(map[int64]bool)
	}
	m.brandLinks[productID][brandID] = true
	return nil
}

func (m *MemStore) BrandLinkExists(_ context.Context, productID, brandID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brandLinks[productID][brandID], nil
}

func (m *MemStore) UpdateProductSpecs(_ context.Context, productID int64, property, specifications []model.SpecPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil
	}
	if len(property) > 0 {
		p.Property = append([]model.SpecPair(nil), property...)
	}
	if len(specifications) > 0 {
		p.Specifications = append([]model.SpecPair(nil), specifications...)
	}
	m.products[productID] = p
	return nil
}

func (m *MemStore) Tx(_ context.Context, fn func(Catalog) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	nextID     int64
	products   map[int64]Product
	entities   map[EntityType][]Entity
	catLinks   map[int64][]int64
	brandLinks map[int64]map[int64]bool
}

func (m *MemStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		nextID:     m.nextID,
		products:   make(map[int64]Product, len(m.products)),
		entities:   make(map[EntityType][]Entity, len(m.entities)),
		catLinks:   make(map[int64][]int64, len(m.catLinks)),
		brandLinks: make(map[int64]map[int64]bool, len(m.brandLinks)),
	}
	for id, p := range m.products {
		s.products[id] = p
	}
	for t, es := range m.entities {
		s.entities[t] = append([]Entity(nil), es...)
	}
	for id, cs := range m.catLinks {
		s.catLinks[id] = append([]int64(nil), cs...)
	}
	for id, bs := range m.brandLinks {
		cp := make(map[int64]bool, len(bs))
		for b, v := range bs {
			cp[b] = v
		}
		s.brandLinks[id] = cp
	}
	return s
}

func (m *MemStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = s.nextID
	m.products = s.products
	m.entities = s.entities
	m.catLinks = s.catLinks
	m.brandLinks = s.brandLinks
}
