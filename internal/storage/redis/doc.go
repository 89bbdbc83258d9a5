// Package redisstore adapts a Redis connection to the pipeline's KV contract.
//
// It exists for hosts that already operate Redis and prefer telemetry state
// (pending interactions, stored session) off the local filesystem, for example
// containerized deployments with ephemeral disks. Keys are namespaced with a
// configurable prefix so the pipeline can share a database with other
// workloads. Values are stored without TTL; the pipeline's own backpressure
// policy bounds growth.
package redisstore
