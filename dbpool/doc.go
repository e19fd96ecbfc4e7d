// Package dbpool puts a bounded-concurrency, retrying façade in front of a
// database client.
//
// Every data operation on a Pool competes for a slot in one shared
// gate.Gate, runs under a per-attempt timeout and is retried according to
// how its error classifies. Stale-session failures, typically a pooler
// reusing a backend that still holds prepared statements from another
// client, trigger a coalesced disconnect and reconnect before the retry.
//
// Connect and Disconnect pass straight through to the client and are not
// gated. Transaction holds a single slot for the whole callback; the
// callback receives the raw transactional client.
package dbpool
