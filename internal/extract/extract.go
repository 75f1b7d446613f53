// Package extract parses fetched listing pages into normalized observations.
// Extraction is eager (a page is bounded in size) and per-tile best-effort:
// one malformed tile never aborts its siblings.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/taxonomy"
)

// Config holds the data-quality bounds applied during extraction. Both are
// configuration, not hard-coded business law.
type Config struct {
	// MinPrice is the minimum plausible price; anything below is treated as a
	// display glitch and dropped.
	MinPrice float64
	// SentinelPrice is the value the source uses for "unavailable"; it is a
	// data-quality guard, not a real price.
	SentinelPrice float64
}

// DefaultConfig returns the bounds observed on the source site.
func DefaultConfig() Config {
	return Config{MinPrice: 0.15, SentinelPrice: 999}
}

// PageContext tags every observation extracted from one listing page.
type PageContext struct {
	Store      string
	City       string
	Link       string
	ObservedAt time.Time
}

// Extractor turns listing markup into observations, classifying grid labels
// through the injected taxonomy classifier.
type Extractor struct {
	classifier *taxonomy.Classifier
	cfg        Config
	logger     *zap.Logger
}

// New builds an Extractor.
func New(classifier *taxonomy.Classifier, cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{classifier: classifier, cfg: cfg, logger: logger}
}

// SubcategoryLinks extracts subcategory page links from a root listing page.
// Links live in anchors inside the carousel structure; relative links are
// resolved against baseURL. Zero links is a valid (empty) result.
func (e *Extractor) SubcategoryLinks(markup []byte, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse root listing: %w", err)
	}

	var links []string
	doc.Find("div.carousel__content__element").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Find("a[href]").First().Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = baseURL + href
		}
		links = append(links, href)
	})
	return links, nil
}

// Listing extracts every product observation from one subcategory page, in
// tile order. Tiles with an unparseable price yield an absent price; tiles
// with no readable name are skipped and logged.
func (e *Extractor) Listing(markup []byte, page PageContext) ([]catalog.Observation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	var observations []catalog.Observation
	doc.Find("div.grid").Each(func(_ int, grid *goquery.Selection) {
		label := strings.TrimSpace(grid.Find("h2.grid__title").First().Text())
		category, subCategory := e.classifier.Classify(label)

		grid.Find("div.tile").Each(func(_ int, tile *goquery.Selection) {
			obs, ok := e.extractTile(tile, page, category, subCategory)
			if !ok {
				return
			}
			if e.reject(obs.Price) {
				return
			}
			observations = append(observations, obs)
		})
	})
	return observations, nil
}

func (e *Extractor) extractTile(
	tile *goquery.Selection,
	page PageContext,
	category, subCategory string,
) (catalog.Observation, bool) {
	rawName := strings.TrimSpace(tile.Find("span.tile__description").First().Text())
	if rawName == "" {
		e.logger.Warn("skipping tile with no product name",
			zap.String("link", page.Link),
			zap.String("grid", subCategory),
		)
		return catalog.Observation{}, false
	}

	priceText := tile.Find("span.product-price__effective").First().Text()
	price := ParsePrice(priceText)
	if !price.Valid && strings.TrimSpace(priceText) != "" {
		e.logger.Warn("unparseable price text",
			zap.String("product", rawName),
			zap.String("text", strings.TrimSpace(priceText)),
		)
	}

	imageURL, _ := tile.Find("img.tile__image").First().Attr("src")

	return catalog.Observation{
		StoreName:   page.Store,
		City:        page.City,
		Category:    category,
		SubCategory: subCategory,
		Product:     NormalizeProductName(rawName),
		Price:       price,
		Link:        page.Link,
		ImageURL:    imageURL,
		ObservedAt:  page.ObservedAt,
	}, true
}

// reject applies the configured price-plausibility bounds. Absent prices pass
// through here; they are dropped at the persistence boundary instead, so the
// two outcomes stay distinguishable.
func (e *Extractor) reject(price catalog.Price) bool {
	if !price.Valid {
		return false
	}
	return price.Amount < e.cfg.MinPrice || price.Amount == e.cfg.SentinelPrice
}
