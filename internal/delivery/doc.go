// Package delivery performs single delivery attempts of event batches
// to the ingestion endpoint. The client is stateless with respect to
// the pending queue: it serializes one batch, posts it with the
// caller's bearer token, and reports success or failure. Retry policy
// lives with the flush controller, not here.
//
// Every attempt is bounded by an explicit deadline so a stalled
// endpoint cannot pin a flush indefinitely.
package delivery
