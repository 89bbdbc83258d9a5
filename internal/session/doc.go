// Package session manages the Supabase auth session consumed by the
// delivery pipeline. It persists tokens in the same durable store as
// the pending queue, answers the "is anyone signed in" question the
// flush controller asks before transmitting, and serializes token
// refreshes behind a lock with a cooldown so concurrent callers cannot
// burn a refresh token twice.
//
// The stored expiry is authoritative when present. When it is missing
// the manager falls back to the access token's exp claim; the token is
// only introspected, never verified, since signature validation is the
// server's job.
package session
