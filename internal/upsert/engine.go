// Package upsert implements the canonical-identity resolver of the catalog:
// it reconciles observations from any source into the normalized entities,
// resolving price conflicts according to the source's policy.
package upsert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

const lockStripes = 256

// Engine applies observations to the catalog. Each upsert runs as a single
// logical transaction, and upserts sharing an observation key are mutually
// exclusive: two concurrent observations for the same (product, store,
// location) can never both insert, nor race on the conditional update.
type Engine struct {
	provider catalog.Provider
	clock    catalog.Clock
	logger   *zap.Logger
	keys     *stripedMutex
}

// New builds an Engine on top of a transactional catalog provider.
func New(provider catalog.Provider, clock catalog.Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		provider: provider,
		clock:    clock,
		logger:   logger,
		keys:     newStripedMutex(lockStripes),
	}
}

// Upsert reconciles one observation into the catalog under the given conflict
// policy. Every referenced entity is created on demand, so a stored price
// never dangles.
func (e *Engine) Upsert(
	ctx context.Context,
	obs catalog.Observation,
	policy catalog.ConflictPolicy,
) (catalog.UpsertResult, error) {
	if !policy.Valid() {
		return catalog.UpsertResult{}, fmt.Errorf("unknown conflict policy %q", policy)
	}
	if err := obs.Validate(); err != nil {
		return catalog.UpsertResult{}, err
	}

	observedAt := obs.ObservedAt
	if observedAt.IsZero() {
		observedAt = e.clock.Now()
	}

	unlock := e.keys.Lock(obs.Key())
	defer unlock()

	var result catalog.UpsertResult
	err := e.provider.WithTx(ctx, func(tx catalog.Tx) error {
		return e.apply(ctx, tx, obs, policy, observedAt, &result)
	})
	if err != nil {
		return catalog.UpsertResult{}, fmt.Errorf("upsert %q: %w", obs.Product, err)
	}
	return result, nil
}

func (e *Engine) apply(
	ctx context.Context,
	tx catalog.Tx,
	obs catalog.Observation,
	policy catalog.ConflictPolicy,
	observedAt time.Time,
	result *catalog.UpsertResult,
) error {
	record := func(kind catalog.EntityKind, created bool) {
		if created {
			result.Created = append(result.Created, kind)
		}
	}

	store, created, err := tx.EnsureStore(ctx, obs.StoreName)
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}
	record(catalog.KindStore, created)

	country := obs.Country
	if country == "" {
		country = catalog.DefaultCountry
	}
	location, created, err := tx.EnsureLocation(ctx, obs.City, country)
	if err != nil {
		return fmt.Errorf("ensure location: %w", err)
	}
	record(catalog.KindLocation, created)

	categoryName, subCategoryName := obs.Category, obs.SubCategory
	if categoryName == "" {
		categoryName = catalog.UncategorizedName
	}
	if subCategoryName == "" {
		subCategoryName = catalog.UncategorizedName
	}
	category, created, err := tx.EnsureCategory(ctx, categoryName)
	if err != nil {
		return fmt.Errorf("ensure category: %w", err)
	}
	record(catalog.KindCategory, created)

	subCategory, created, err := tx.EnsureSubCategory(ctx, subCategoryName, category.ID)
	if err != nil {
		return fmt.Errorf("ensure sub category: %w", err)
	}
	record(catalog.KindSubCategory, created)

	product, created, err := tx.EnsureProduct(ctx, obs.Product, subCategory.ID, obs.Link, obs.ImageURL)
	if err != nil {
		return fmt.Errorf("ensure product: %w", err)
	}
	record(catalog.KindProduct, created)

	existing, found, err := tx.ProductPriceFor(ctx, product.ID, store.ID, location.ID)
	if err != nil {
		return fmt.Errorf("read product price: %w", err)
	}
	if !found {
		if _, err := tx.InsertProductPrice(ctx, catalog.ProductPrice{
			ProductID:   product.ID,
			StoreID:     store.ID,
			LocationID:  location.ID,
			Price:       obs.Price.Amount,
			LastUpdated: observedAt,
		}); err != nil {
			return fmt.Errorf("insert product price: %w", err)
		}
		record(catalog.KindProductPrice, true)
		return nil
	}

	switch policy {
	case catalog.PolicyOverwrite:
		// The crawl is the freshest available truth for this (store, location)
		// at fetch time; recency is not consulted.
		if err := tx.UpdateProductPrice(ctx, existing.ID, obs.Price.Amount, observedAt); err != nil {
			return fmt.Errorf("update product price: %w", err)
		}
		result.Updated = true
	case catalog.PolicyNewerWins:
		if !observedAt.After(existing.LastUpdated) {
			result.SkippedReason = catalog.SkipReasonStale
			e.logger.Debug("stale observation skipped",
				zap.String("product", obs.Product),
				zap.Time("observed_at", observedAt),
				zap.Time("stored_at", existing.LastUpdated),
			)
			return nil
		}
		if err := tx.UpdateProductPrice(ctx, existing.ID, obs.Price.Amount, observedAt); err != nil {
			return fmt.Errorf("update product price: %w", err)
		}
		result.Updated = true
	}
	return nil
}
