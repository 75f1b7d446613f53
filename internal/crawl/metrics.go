package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesFetched tracks the number of listing pages successfully retrieved.
	TotalPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_pages_fetched_total",
		Help: "The total number of listing pages successfully fetched.",
	})
	// TotalFetchErrors tracks the number of page retrievals that failed.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// TotalObservationsExtracted tracks the number of product observations parsed
	// out of listing pages.
	TotalObservationsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_observations_extracted_total",
		Help: "The total number of product observations extracted from pages.",
	})
	// TotalJobsCompleted tracks crawl jobs that reached the Done state.
	TotalJobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_crawl_jobs_completed_total",
		Help: "The total number of crawl jobs that completed.",
	})
	// TotalJobsFailed tracks crawl jobs that failed before fetching any listing.
	TotalJobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_crawl_jobs_failed_total",
		Help: "The total number of crawl jobs that failed.",
	})
)
