// Package catalog defines the canonical entities of the price catalog and the
// transactional contracts the ingestion pipeline persists them through.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCountry is assumed when an observation carries no country.
const DefaultCountry = "Italy"

// UncategorizedName is the sentinel (category, subcategory) pair assigned when
// taxonomy classification finds no match. It is a normal row, not an error state.
const UncategorizedName = "Uncategorized"

// EntityKind identifies a catalog entity type in upsert results.
type EntityKind string

// Entity kinds reported in UpsertResult.Created.
const (
	KindStore        EntityKind = "store"
	KindLocation     EntityKind = "location"
	KindCategory     EntityKind = "category"
	KindSubCategory  EntityKind = "sub_category"
	KindProduct      EntityKind = "product"
	KindProductPrice EntityKind = "product_price"
)

// ConflictPolicy governs whether a new observation's price replaces a stored one.
type ConflictPolicy string

const (
	// PolicyOverwrite replaces the stored price unconditionally. Used by the
	// crawl source, which reads the storefront's current state directly.
	PolicyOverwrite ConflictPolicy = "overwrite"
	// PolicyNewerWins replaces the stored price only when the observation is
	// strictly newer than the stored last-updated timestamp. Used by the
	// receipt source, whose observations may be backdated.
	PolicyNewerWins ConflictPolicy = "newer_wins"
)

// Valid reports whether p is a known policy.
func (p ConflictPolicy) Valid() bool {
	return p == PolicyOverwrite || p == PolicyNewerWins
}

// Store is a retailer, unique by name.
type Store struct {
	ID   int64
	Name string
}

// Location is a (city, country) pair, unique as a pair.
type Location struct {
	ID      int64
	City    string
	Country string
}

// Category is a top-level taxonomy bucket, unique by name.
type Category struct {
	ID   int64
	Name string
}

// SubCategory belongs to exactly one Category; unique by (name, category).
type SubCategory struct {
	ID         int64
	CategoryID int64
	Name       string
}

// Product belongs to exactly one SubCategory; unique by (name, subcategory).
// Link and ImageURL are presentation metadata, overwritten on every observation.
type Product struct {
	ID            int64
	SubCategoryID int64
	Name          string
	Link          string
	ImageURL      string
}

// ProductPrice is the only mutable fact in the catalog: the latest observed
// price for a (product, store, location) triple.
type ProductPrice struct {
	ID          int64
	ProductID   int64
	StoreID     int64
	LocationID  int64
	Price       float64
	LastUpdated time.Time
}

// Price is an optional decimal amount. A zero Price (Valid=false) means the
// source displayed no parseable price, which is distinct from a price of zero.
type Price struct {
	Amount float64
	Valid  bool
}

// PriceOf returns a valid Price carrying amount.
func PriceOf(amount float64) Price {
	return Price{Amount: amount, Valid: true}
}

// MarshalJSON encodes a missing price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(p.Amount, 'f', -1, 64)), nil
}

// UnmarshalJSON treats null as an absent price.
func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Price{}
		return nil
	}
	amount, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse price: %w", err)
	}
	*p = PriceOf(amount)
	return nil
}

// Observation is the transient unit the pipeline operates on: one source-tagged
// fact about one product's price at one store/location and point in time.
// It is never persisted as-is.
type Observation struct {
	StoreName   string    `json:"store_name"`
	City        string    `json:"city"`
	Country     string    `json:"country,omitempty"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	Product     string    `json:"product"`
	Price       Price     `json:"price"`
	Link        string    `json:"link,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ObservedAt  time.Time `json:"observed_at,omitzero"`
}

// Key returns the canonical identity the upsert engine serializes on:
// concurrent upserts sharing a Key are mutually exclusive.
func (o Observation) Key() string {
	return strings.ToLower(strings.Join([]string{
		o.Product, o.SubCategory, o.StoreName, o.City,
	}, "\x1f"))
}

// Validate checks the observation is persistable. Observations without a
// parseable price are dropped before the engine, so a missing price here is
// a caller bug, not a data-quality condition.
func (o Observation) Validate() error {
	switch {
	case o.StoreName == "":
		return fmt.Errorf("observation missing store name")
	case o.City == "":
		return fmt.Errorf("observation missing city")
	case o.Product == "":
		return fmt.Errorf("observation missing product name")
	case !o.Price.Valid:
		return fmt.Errorf("observation for %q has no price", o.Product)
	case o.Price.Amount < 0:
		return fmt.Errorf("observation for %q has negative price %.2f", o.Product, o.Price.Amount)
	}
	return nil
}

// SkipReasonStale marks a newer-wins upsert that lost to a fresher stored price.
const SkipReasonStale = "stale"

// UpsertResult reports what one upsert did to the catalog.
type UpsertResult struct {
	Created       []EntityKind
	Updated       bool
	SkippedReason string
}

// CreatedKind reports whether the upsert created an entity of the given kind.
func (r UpsertResult) CreatedKind(kind EntityKind) bool {
	for _, k := range r.Created {
		if k == kind {
			return true
		}
	}
	return false
}
