// Package taxonomy maps raw storefront subcategory labels to the canonical
// (category, subcategory) pairs of the catalog.
package taxonomy

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

var classificationMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pricewatch_classification_misses_total",
	Help: "The total number of labels that fell back to the Uncategorized pair.",
})

// Table is the static two-level mapping: category name -> subcategory key ->
// raw labels historically seen on the source site. Labels are not unique
// across subcategory keys; ambiguity resolves to the first match in sorted
// (category, subcategory) order. That is a documented limitation of the
// source data, not a correctness guarantee.
type Table map[string]map[string][]string

// Classifier resolves raw labels against an immutable Table. It is pure and
// safe for concurrent use.
type Classifier struct {
	byLabel map[string]pair
}

type pair struct {
	category    string
	subCategory string
}

// NewClassifier builds a Classifier from the given table. The table is
// flattened once, in sorted category and subcategory order, so repeated
// labels always resolve the same way.
func NewClassifier(table Table) *Classifier {
	byLabel := make(map[string]pair)

	categories := make([]string, 0, len(table))
	for name := range table {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, category := range categories {
		subs := table[category]
		keys := make([]string, 0, len(subs))
		for key := range subs {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for _, label := range subs[key] {
				if _, seen := byLabel[label]; seen {
					continue
				}
				byLabel[label] = pair{category: category, subCategory: key}
			}
		}
	}
	return &Classifier{byLabel: byLabel}
}

// Classify returns the canonical (category, subcategory) pair for a raw label.
// Unknown labels resolve to the Uncategorized sentinel pair and are counted,
// never failed.
func (c *Classifier) Classify(label string) (string, string) {
	if p, ok := c.byLabel[label]; ok {
		return p.category, p.subCategory
	}
	classificationMisses.Inc()
	return catalog.UncategorizedName, catalog.UncategorizedName
}
