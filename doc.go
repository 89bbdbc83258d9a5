// Package telemetry captures user interaction events (views, clicks),
// buffers them in a durable local queue, and ships them in
// authenticated batches to an ingestion endpoint. Recording is
// fire-and-forget: no public recording or flushing operation ever
// returns an error to the host, and events survive restarts through
// the pipeline's persistent store.
//
// A flush is triggered when the pending queue reaches MaxBatchSize,
// optionally on a FlushInterval timer, and on demand. At most one
// flush runs at a time. Nothing is transmitted without a usable
// session; events recorded while signed out stay queued. The queue is
// capped at MaxStoredInteractions, dropping the oldest events first,
// and repeated delivery failures halve it rather than grow it without
// bound.
//
// Example:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.IngestURL = "https://api.example.com/interactions/batch"
//	cfg.DataDir = "./data"
//
//	p, err := telemetry.Open(telemetry.Options{Config: cfg})
//	if err != nil {
//		// handle
//	}
//	defer p.Close()
//
//	p.RecordView(ctx, productID, userID)
//	p.RecordClick(ctx, productID, userID)
package telemetry
