package catalog

import (
	"context"
	"time"
)

// Tx is the transactional handle the upsert engine drives, scoped to a single
// observation. Every Ensure* call is an idempotent get-or-create against the
// entity's uniqueness key; created reports whether the row was inserted.
type Tx interface {
	EnsureStore(ctx context.Context, name string) (Store, bool, error)
	EnsureLocation(ctx context.Context, city, country string) (Location, bool, error)
	EnsureCategory(ctx context.Context, name string) (Category, bool, error)
	EnsureSubCategory(ctx context.Context, name string, categoryID int64) (SubCategory, bool, error)

	// EnsureProduct gets or creates the product keyed by (name, subcategory).
	// On an existing product the link and image URL are overwritten with the
	// supplied values.
	EnsureProduct(ctx context.Context, name string, subCategoryID int64, link, imageURL string) (Product, bool, error)

	// ProductPriceFor reads the price row for the triple, locking it against
	// concurrent writers where the backend supports row locks. The bool
	// reports whether a row exists.
	ProductPriceFor(ctx context.Context, productID, storeID, locationID int64) (ProductPrice, bool, error)
	InsertProductPrice(ctx context.Context, price ProductPrice) (ProductPrice, error)
	UpdateProductPrice(ctx context.Context, id int64, price float64, lastUpdated time.Time) error
}

// Provider opens transactions against the catalog. WithTx commits when fn
// returns nil and rolls back otherwise; the Tx must not escape fn.
type Provider interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// ProductQuery filters read-only product searches for the presentation layer.
type ProductQuery struct {
	Query    string
	Category string
	Store    string
	Limit    int
}

// PriceView is one store/location price attached to a ProductView.
type PriceView struct {
	Store       string    `json:"store"`
	City        string    `json:"city"`
	Price       float64   `json:"price"`
	LastUpdated time.Time `json:"last_updated"`
}

// ProductView is a product joined to its taxonomy and latest per-store prices.
type ProductView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	SubCategory string      `json:"sub_category"`
	Link        string      `json:"link,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Prices      []PriceView `json:"prices"`
}

// Reader exposes the read-only queries the presentation collaborator consumes.
// After any completed upsert the catalog is fully referenced: a PriceView never
// names a store or location that does not exist.
type Reader interface {
	Stores(ctx context.Context) ([]Store, error)
	Categories(ctx context.Context) ([]Category, error)
	SearchProducts(ctx context.Context, q ProductQuery) ([]ProductView, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
