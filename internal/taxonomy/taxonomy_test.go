package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

func TestClassifyKnownLabels(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Default())

	cases := []struct {
		label       string
		category    string
		subCategory string
	}{
		{"Rhum", "Beverages", "Alcoholic Beverages"},
		{"Birre", "Beverages", "Alcoholic Beverages"},
		{"Pasta di semola corta", "Food", "Pasta & Rice"},
		{"Shampoo", "Personal Care", "Hair Care"},
		{"Carta igienica", "Household Products", "Paper Products"},
		{"Olive", "Specialty & Gourmet", "Gourmet Items"},
		{"Cibo umido gatto", "Pet Supplies", "Cat Supplies"},
	}
	for _, tc := range cases {
		category, subCategory := c.Classify(tc.label)
		require.Equal(t, tc.category, category, "label %q", tc.label)
		require.Equal(t, tc.subCategory, subCategory, "label %q", tc.label)
	}
}

func TestClassifyUnknownLabelFallsBack(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Default())

	category, subCategory := c.Classify("Nonexistent Label")
	require.Equal(t, catalog.UncategorizedName, category)
	require.Equal(t, catalog.UncategorizedName, subCategory)
}

func TestClassifyAmbiguousLabelIsDeterministic(t *testing.T) {
	t.Parallel()

	// The same label appears under two keys; sorted order picks the first.
	table := Table{
		"Food": {
			"Snacks":       {"Patatine"},
			"Frozen Foods": {"Patatine"},
		},
	}

	for range 10 {
		c := NewClassifier(table)
		category, subCategory := c.Classify("Patatine")
		require.Equal(t, "Food", category)
		require.Equal(t, "Frozen Foods", subCategory)
	}
}

func TestClassifierIgnoresTableMutation(t *testing.T) {
	t.Parallel()

	table := Table{"Food": {"Snacks": {"Taralli"}}}
	c := NewClassifier(table)
	table["Food"]["Snacks"] = nil

	category, subCategory := c.Classify("Taralli")
	require.Equal(t, "Food", category)
	require.Equal(t, "Snacks", subCategory)
}
