// Package publisher defines the event publishing contract for completed
// crawl jobs.
package publisher

import "context"

// Publisher pushes job-summary events to Pub/Sub (or an in-memory sink).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
