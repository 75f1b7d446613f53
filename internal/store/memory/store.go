// Package memory provides an in-memory catalog store for tests and local
// development. It honors the same uniqueness keys and transactional contract
// as the Postgres store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

// Store implements catalog.Provider and catalog.Reader over plain maps.
// WithTx serializes all transactions under one mutex and restores a snapshot
// on rollback.
type Store struct {
	mu     sync.Mutex
	data   tables
	nextID int64

	// failNext, when set, fails the next transaction. Test hook.
	failNext error
}

type tables struct {
	stores        map[string]catalog.Store
	locations     map[string]catalog.Location
	categories    map[string]catalog.Category
	subCategories map[string]catalog.SubCategory
	products      map[string]catalog.Product
	prices        map[string]catalog.ProductPrice
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: tables{
		stores:        make(map[string]catalog.Store),
		locations:     make(map[string]catalog.Location),
		categories:    make(map[string]catalog.Category),
		subCategories: make(map[string]catalog.SubCategory),
		products:      make(map[string]catalog.Product),
		prices:        make(map[string]catalog.ProductPrice),
	}}
}

// FailNextTx makes the next transaction roll back with err.
func (s *Store) FailNextTx(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// WithTx runs fn under the store lock, committing on nil and restoring the
// pre-transaction state otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(catalog.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}

	snapshot := s.data.clone()
	savedID := s.nextID
	if err := fn(&tx{s: s}); err != nil {
		s.data = snapshot
		s.nextID = savedID
		return err
	}
	return nil
}

// Close implements catalog.Provider.
func (s *Store) Close() error { return nil }

func (t tables) clone() tables {
	out := tables{
		stores:        make(map[string]catalog.Store, len(t.stores)),
		locations:     make(map[string]catalog.Location, len(t.locations)),
		categories:    make(map[string]catalog.Category, len(t.categories)),
		subCategories: make(map[string]catalog.SubCategory, len(t.subCategories)),
		products:      make(map[string]catalog.Product, len(t.products)),
		prices:        make(map[string]catalog.ProductPrice, len(t.prices)),
	}
	for k, v := range t.stores {
		out.stores[k] = v
	}
	for k, v := range t.locations {
		out.locations[k] = v
	}
	for k, v := range t.categories {
		out.categories[k] = v
	}
	for k, v := range t.subCategories {
		out.subCategories[k] = v
	}
	for k, v := range t.products {
		out.products[k] = v
	}
	for k, v := range t.prices {
		out.prices[k] = v
	}
	return out
}

type tx struct {
	s *Store
}

func (t *tx) nextID() int64 {
	t.s.nextID++
	return t.s.nextID
}

func lower(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "|"))
}

func (t *tx) EnsureStore(_ context.Context, name string) (catalog.Store, bool, error) {
	key := lower(name)
	if st, ok := t.s.data.stores[key]; ok {
		return st, false, nil
	}
	st := catalog.Store{ID: t.nextID(), Name: name}
	t.s.data.stores[key] = st
	return st, true, nil
}

func (t *tx) EnsureLocation(_ context.Context, city, country string) (catalog.Location, bool, error) {
	key := lower(city, country)
	if loc, ok := t.s.data.locations[key]; ok {
		return loc, false, nil
	}
	loc := catalog.Location{ID: t.nextID(), City: city, Country: country}
	t.s.data.locations[key] = loc
	return loc, true, nil
}

func (t *tx) EnsureCategory(_ context.Context, name string) (catalog.Category, bool, error) {
	key := lower(name)
	if c, ok := t.s.data.categories[key]; ok {
		return c, false, nil
	}
	c := catalog.Category{ID: t.nextID(), Name: name}
	t.s.data.categories[key] = c
	return c, true, nil
}

func (t *tx) EnsureSubCategory(_ context.Context, name string, categoryID int64) (catalog.SubCategory, bool, error) {
	key := fmt.Sprintf("%s|%d", lower(name), categoryID)
	if sc, ok := t.s.data.subCategories[key]; ok {
		return sc, false, nil
	}
	sc := catalog.SubCategory{ID: t.nextID(), CategoryID: categoryID, Name: name}
	t.s.data.subCategories[key] = sc
	return sc, true, nil
}

func (t *tx) EnsureProduct(_ context.Context, name string, subCategoryID int64, link, imageURL string) (catalog.Product, bool, error) {
	key := fmt.Sprintf("%s|%d", lower(name), subCategoryID)
	if p, ok := t.s.data.products[key]; ok {
		p.Link = link
		p.ImageURL = imageURL
		t.s.data.products[key] = p
		return p, false, nil
	}
	p := catalog.Product{
		ID:            t.nextID(),
		SubCategoryID: subCategoryID,
		Name:          name,
		Link:          link,
		ImageURL:      imageURL,
	}
	t.s.data.products[key] = p
	return p, true, nil
}

func priceKey(productID, storeID, locationID int64) string {
	return fmt.Sprintf("%d|%d|%d", productID, storeID, locationID)
}

func (t *tx) ProductPriceFor(_ context.Context, productID, storeID, locationID int64) (catalog.ProductPrice, bool, error) {
	pp, ok := t.s.data.prices[priceKey(productID, storeID, locationID)]
	return pp, ok, nil
}

func (t *tx) InsertProductPrice(_ context.Context, price catalog.ProductPrice) (catalog.ProductPrice, error) {
	key := priceKey(price.ProductID, price.StoreID, price.LocationID)
	if _, exists := t.s.data.prices[key]; exists {
		return catalog.ProductPrice{}, fmt.Errorf("product price already exists for key %s", key)
	}
	price.ID = t.nextID()
	t.s.data.prices[key] = price
	return price, nil
}

func (t *tx) UpdateProductPrice(_ context.Context, id int64, amount float64, lastUpdated time.Time) error {
	for key, pp := range t.s.data.prices {
		if pp.ID == id {
			pp.Price = amount
			pp.LastUpdated = lastUpdated
			t.s.data.prices[key] = pp
			return nil
		}
	}
	return fmt.Errorf("product price %d not found", id)
}

// Stores implements catalog.Reader.
func (s *Store) Stores(_ context.Context) ([]catalog.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Store, 0, len(s.data.stores))
	for _, st := range s.data.stores {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Categories implements catalog.Reader.
func (s *Store) Categories(_ context.Context) ([]catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SearchProducts implements catalog.Reader: products joined to taxonomy and
// their latest per-store prices, cheapest first.
func (s *Store) SearchProducts(_ context.Context, q catalog.ProductQuery) ([]catalog.ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storesByID := make(map[int64]catalog.Store, len(s.data.stores))
	for _, st := range s.data.stores {
		storesByID[st.ID] = st
	}
	locationsByID := make(map[int64]catalog.Location, len(s.data.locations))
	for _, loc := range s.data.locations {
		locationsByID[loc.ID] = loc
	}
	categoriesByID := make(map[int64]catalog.Category, len(s.data.categories))
	for _, c := range s.data.categories {
		categoriesByID[c.ID] = c
	}
	subCategoriesByID := make(map[int64]catalog.SubCategory, len(s.data.subCategories))
	for _, sc := range s.data.subCategories {
		subCategoriesByID[sc.ID] = sc
	}

	var views []catalog.ProductView
	for _, p := range s.data.products {
		sc := subCategoriesByID[p.SubCategoryID]
		c := categoriesByID[sc.CategoryID]

		if q.Category != "" && !strings.EqualFold(c.Name, q.Category) {
			continue
		}
		if q.Query != "" {
			haystack := strings.ToLower(p.Name + " " + sc.Name + " " + c.Name)
			if !strings.Contains(haystack, strings.ToLower(q.Query)) {
				continue
			}
		}

		view := catalog.ProductView{
			ID:          p.ID,
			Name:        p.Name,
			Category:    c.Name,
			SubCategory: sc.Name,
			Link:        p.Link,
			ImageURL:    p.ImageURL,
		}
		for _, pp := range s.data.prices {
			if pp.ProductID != p.ID {
				continue
			}
			st := storesByID[pp.StoreID]
			if q.Store != "" && !strings.EqualFold(st.Name, q.Store) {
				continue
			}
			view.Prices = append(view.Prices, catalog.PriceView{
				Store:       st.Name,
				City:        locationsByID[pp.LocationID].City,
				Price:       pp.Price,
				LastUpdated: pp.LastUpdated,
			})
		}
		if q.Store != "" && len(view.Prices) == 0 {
			continue
		}
		sort.Slice(view.Prices, func(i, j int) bool { return view.Prices[i].Price < view.Prices[j].Price })
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return minPrice(views[i]) < minPrice(views[j])
	})
	if q.Limit > 0 && len(views) > q.Limit {
		views = views[:q.Limit]
	}
	return views, nil
}

func minPrice(v catalog.ProductView) float64 {
	if len(v.Prices) == 0 {
		return 0
	}
	return v.Prices[0].Price
}

// PriceCount reports the number of stored price rows. Test helper.
func (s *Store) PriceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.prices)
}
