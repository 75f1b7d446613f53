package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/persist"
)

const maxProductLimit = 500

// submitObservation handles POST /v1/observations. Receipt observations may be
// backdated, so they always run under the newer-wins policy; an observation
// without a timestamp is stamped with the current time. The handler waits for
// the upsert outcome so the collaborator learns whether its price landed.
func (s *Server) submitObservation(w http.ResponseWriter, r *http.Request) {
	var obs catalog.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = s.clock.Now()
	}
	if err := obs.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	type outcome struct {
		result catalog.UpsertResult
		err    error
	}
	done := make(chan outcome, 1)
	task := persist.Task{
		Observation: obs,
		Policy:      catalog.PolicyNewerWins,
		Done: func(result catalog.UpsertResult, err error) {
			done <- outcome{result: result, err: err}
		},
	}
	if err := s.sink.Submit(r.Context(), task); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "observation queue unavailable")
		return
	}

	select {
	case <-r.Context().Done():
		// The task still completes in the background.
		s.writeError(w, http.StatusRequestTimeout, "request canceled")
	case out := <-done:
		if out.err != nil {
			s.logger.Error("observation upsert failed",
				zap.String("product", obs.Product),
				zap.Error(out.err),
			)
			s.writeError(w, http.StatusInternalServerError, "failed to store observation")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"updated":        out.result.Updated,
			"created":        out.result.Created,
			"skipped_reason": out.result.SkippedReason,
		})
	}
}

// listStores handles GET /v1/stores.
func (s *Server) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.reader.Stores(r.Context())
	if err != nil {
		s.logger.Error("list stores failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list stores")
		return
	}
	names := make([]string, 0, len(stores))
	for _, st := range stores {
		names = append(names, st.Name)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stores": names})
}

// listCategories handles GET /v1/categories.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.reader.Categories(r.Context())
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": names})
}

// searchProducts handles GET /v1/products?q=&category=&store=&limit=.
func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := catalog.ProductQuery{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Store:    strings.TrimSpace(r.URL.Query().Get("store")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxProductLimit {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = limit
	}

	products, err := s.reader.SearchProducts(r.Context(), query)
	if err != nil {
		s.logger.Error("search products failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to search products")
		return
	}
	if products == nil {
		products = []catalog.ProductView{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"products": products})
}
